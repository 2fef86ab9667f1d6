package dicesession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	redisclient "github.com/dabidoe/character-foundry/internal/redis"
)

const (
	// Key pattern: dice_session:{entity_id}:{context}
	sessionKeyPrefix = "dice_session:"

	// DefaultTTL applies when a caller passes no TTL
	DefaultTTL = 15 * time.Minute

	// maxRolls caps a session's history; older rolls are dropped first
	maxRolls = 50

	errEntityIDEmpty = "entity ID cannot be empty"
	errContextEmpty  = "context cannot be empty"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis repository for dice sessions
func NewRedisRepository(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func validateKey(entityID, sessionContext string) error {
	if entityID == "" {
		return errors.InvalidArgument(errEntityIDEmpty)
	}
	if sessionContext == "" {
		return errors.InvalidArgument(errContextEmpty)
	}
	return nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := r.clock.Now()

	session := &DiceSession{
		EntityID:  input.EntityID,
		Context:   input.Context,
		Rolls:     trimRolls(input.Rolls),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := r.save(ctx, session, ttl); err != nil {
		return nil, err
	}

	return &CreateOutput{Session: session}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := buildKey(input.EntityID, input.Context)
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no dice session for %s in context %s", input.EntityID, input.Context)
		}
		return nil, errors.Wrapf(err, "failed to get session from Redis")
	}

	var session DiceSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session")
	}

	// Redis expiry is authoritative but the clock may run ahead in tests
	if !r.clock.Now().Before(session.ExpiresAt) {
		_ = r.client.Del(ctx, key)
		return nil, errors.NotFound("dice session has expired")
	}

	return &GetOutput{Session: &session}, nil
}

func (r *redisRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	existing, err := r.Get(ctx, GetInput{EntityID: input.EntityID, Context: input.Context})
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		created, err := r.Create(ctx, CreateInput(input))
		if err != nil {
			return nil, err
		}
		return &AppendOutput{Session: created.Session}, nil
	}

	session := existing.Session
	session.Rolls = trimRolls(append(session.Rolls, input.Rolls...))

	remaining := session.ExpiresAt.Sub(r.clock.Now())
	if err := r.save(ctx, session, remaining); err != nil {
		return nil, err
	}

	return &AppendOutput{Session: session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	var rollsDeleted int
	if out, err := r.Get(ctx, GetInput(input)); err == nil {
		rollsDeleted = len(out.Session.Rolls)
	}

	if err := r.client.Del(ctx, buildKey(input.EntityID, input.Context)).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete session from Redis")
	}

	return &DeleteOutput{RollsDeleted: rollsDeleted}, nil
}

func (r *redisRepository) save(ctx context.Context, session *DiceSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal session")
	}

	key := buildKey(session.EntityID, session.Context)
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to store session in Redis")
	}
	return nil
}

func trimRolls(rolls []DiceRoll) []DiceRoll {
	if len(rolls) > maxRolls {
		return rolls[len(rolls)-maxRolls:]
	}
	return rolls
}

func buildKey(entityID, sessionContext string) string {
	return fmt.Sprintf("%s%s:%s", sessionKeyPrefix, entityID, sessionContext)
}
