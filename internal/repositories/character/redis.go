package character

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	redisclient "github.com/dabidoe/character-foundry/internal/redis"
)

const (
	characterKeyPrefix = "character:"
	userIndexPrefix    = "character:user:"
	createdIndexKey    = "character:index:created"

	searchBatchSize = 100

	maxModifyAttempts = 5

	// Error messages
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("Client")
	}
	return vb.Build()
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func characterKey(id string) string {
	return characterKeyPrefix + id
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	char := input.Character
	if char.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKey(char.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", char.ID)
	}

	now := r.clock.Now()
	if char.CreatedAt.IsZero() {
		char.CreatedAt = now
	}
	char.UpdatedAt = now

	data, err := json.Marshal(char)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, createdIndexKey, redis.Z{
		Score:  float64(char.CreatedAt.UnixMilli()),
		Member: char.ID,
	})
	if char.UserID != "" {
		pipe.SAdd(ctx, userIndexPrefix+char.UserID, char.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}

	slog.DebugContext(ctx, "character created",
		"character_id", char.ID,
		"user_id", char.UserID)

	return &CreateOutput{Character: char}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	result, err := r.client.Get(ctx, characterKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var char entities.Character
	if err := json.Unmarshal([]byte(result), &char); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character")
	}

	return &GetOutput{Character: &char}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	skip := max(0, input.Skip)

	if input.UserID != "" {
		return r.listByUser(ctx, input.UserID, limit, skip)
	}

	total, err := r.client.ZCard(ctx, createdIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count characters")
	}

	ids, err := r.client.ZRevRange(ctx, createdIndexKey, int64(skip), int64(skip+limit-1)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read character index")
	}

	characters, dangling, err := r.loadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	r.dropDangling(ctx, dangling, "")

	return &ListOutput{Characters: characters, Total: int(total)}, nil
}

func (r *redisRepository) listByUser(ctx context.Context, userID string, limit, skip int) (*ListOutput, error) {
	indexKey := userIndexPrefix + userID
	slog.DebugContext(ctx, "listing characters by user index",
		"user_id", userID,
		"index_key", indexKey)

	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get characters from index %s", indexKey)
	}

	characters, dangling, err := r.loadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	r.dropDangling(ctx, dangling, userID)
	sortNewestFirst(characters)

	total := len(characters)
	if skip >= total {
		return &ListOutput{Characters: []*entities.Character{}, Total: total}, nil
	}
	end := min(total, skip+limit)

	return &ListOutput{Characters: characters[skip:end], Total: total}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	char := input.Character
	if char.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	existing, err := r.Get(ctx, GetInput{ID: char.ID})
	if err != nil {
		return nil, err
	}

	char.CreatedAt = existing.Character.CreatedAt
	char.UpdatedAt = r.clock.Now()

	data, err := json.Marshal(char)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKey(char.ID), data, 0)

	if oldUser := existing.Character.UserID; oldUser != char.UserID {
		if oldUser != "" {
			pipe.SRem(ctx, userIndexPrefix+oldUser, char.ID)
		}
		if char.UserID != "" {
			pipe.SAdd(ctx, userIndexPrefix+char.UserID, char.ID)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update character")
	}

	return &UpdateOutput{Character: char}, nil
}

func (r *redisRepository) Modify(ctx context.Context, input ModifyInput) (*ModifyOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Apply == nil {
		return nil, errors.InvalidArgument("apply function cannot be nil")
	}

	key := characterKey(input.ID)
	var written *entities.Character

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return errors.NotFoundf("character with ID %s not found", input.ID)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to get character")
		}

		var char entities.Character
		if err := json.Unmarshal([]byte(raw), &char); err != nil {
			return errors.Wrapf(err, "failed to unmarshal character")
		}
		createdAt, oldUser := char.CreatedAt, char.UserID

		if err := input.Apply(&char); err != nil {
			return err
		}
		char.ID = input.ID
		char.CreatedAt = createdAt
		char.UpdatedAt = r.clock.Now()

		data, err := json.Marshal(&char)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal character")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if oldUser != char.UserID {
				if oldUser != "" {
					pipe.SRem(ctx, userIndexPrefix+oldUser, char.ID)
				}
				if char.UserID != "" {
					pipe.SAdd(ctx, userIndexPrefix+char.UserID, char.ID)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		written = &char
		return nil
	}

	for attempt := 1; attempt <= maxModifyAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return &ModifyOutput{Character: written}, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			var coded *errors.Error
			if errors.As(err, &coded) {
				return nil, err
			}
			return nil, errors.Wrapf(err, "failed to modify character")
		}
		slog.DebugContext(ctx, "character changed during modify, retrying",
			"character_id", input.ID,
			"attempt", attempt)
	}

	return nil, errors.Newf(errors.CodeUnavailable,
		"character %s kept changing, gave up after %d attempts", input.ID, maxModifyAttempts)
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	existing, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, characterKey(input.ID))
	pipe.ZRem(ctx, createdIndexKey, input.ID)
	if existing.Character.UserID != "" {
		pipe.SRem(ctx, userIndexPrefix+existing.Character.UserID, input.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character")
	}

	return &DeleteOutput{Deleted: true}, nil
}

func (r *redisRepository) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	query := strings.ToLower(strings.TrimSpace(input.Query))
	if query == "" {
		return nil, errors.InvalidArgument("search query cannot be empty")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	matches := make([]*entities.Character, 0, limit)
	// the index is paged by offset, so dangling entries are removed only
	// after the scan
	var dangling []string
	defer func() { r.dropDangling(ctx, dangling, "") }()

	for start := int64(0); len(matches) < limit; start += searchBatchSize {
		ids, err := r.client.ZRevRange(ctx, createdIndexKey, start, start+searchBatchSize-1).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read character index")
		}
		if len(ids) == 0 {
			break
		}

		batch, missing, err := r.loadMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		dangling = append(dangling, missing...)
		for _, char := range batch {
			if matchesQuery(char, query) {
				matches = append(matches, char)
				if len(matches) == limit {
					break
				}
			}
		}
	}

	return &SearchOutput{Characters: matches}, nil
}

func matchesQuery(char *entities.Character, query string) bool {
	for _, field := range []string{char.Name, char.Race, char.Class} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func (r *redisRepository) Stats(ctx context.Context, _ StatsInput) (*StatsOutput, error) {
	since := r.clock.Now().Add(-24 * time.Hour).UnixMilli()

	pipe := r.client.Pipeline()
	totalCmd := pipe.ZCard(ctx, createdIndexKey)
	recentCmd := pipe.ZCount(ctx, createdIndexKey, strconv.FormatInt(since, 10), "+inf")
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to count characters")
	}

	return &StatsOutput{
		Total:          int(totalCmd.Val()),
		CreatedLast24h: int(recentCmd.Val()),
	}, nil
}

// loadMany fetches documents in one round trip, keeping index order. IDs
// whose document is gone are returned separately.
func (r *redisRepository) loadMany(ctx context.Context, ids []string) ([]*entities.Character, []string, error) {
	characters := make([]*entities.Character, 0, len(ids))
	if len(ids) == 0 {
		return characters, nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, characterKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, nil, errors.Wrapf(err, "failed to load characters")
	}

	var dangling []string
	for i, cmd := range cmds {
		raw, err := cmd.Result()
		if err == redis.Nil {
			dangling = append(dangling, ids[i])
			continue
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to get character %s", ids[i])
		}

		var char entities.Character
		if err := json.Unmarshal([]byte(raw), &char); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to unmarshal character %s", ids[i])
		}
		characters = append(characters, &char)
	}

	return characters, dangling, nil
}

// dropDangling removes index entries whose document is gone
func (r *redisRepository) dropDangling(ctx context.Context, ids []string, userID string) {
	if len(ids) == 0 {
		return
	}
	slog.WarnContext(ctx, "characters not found, cleaning up index",
		"character_ids", ids)

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe := r.client.Pipeline()
	pipe.ZRem(ctx, createdIndexKey, members...)
	if userID != "" {
		pipe.SRem(ctx, userIndexPrefix+userID, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.WarnContext(ctx, "failed to clean up character index", "error", err)
	}
}

func sortNewestFirst(characters []*entities.Character) {
	sort.SliceStable(characters, func(i, j int) bool {
		return characters[i].CreatedAt.After(characters[j].CreatedAt)
	})
}
