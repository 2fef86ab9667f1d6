package portraitjobs

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	redisclient "github.com/dabidoe/character-foundry/internal/redis"
)

const (
	queueKey       = "portrait:jobs"
	stateKeyPrefix = "portrait:job:"

	// StateTTL is how long job states stay readable
	StateTTL = 24 * time.Hour

	defaultDequeueTimeout = 5 * time.Second
)

// RedisConfig configures the Redis queue
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the config
func (c *RedisConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedis creates the Redis-backed job queue
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	return &redisRepository{client: cfg.Client, clock: c}, nil
}

func (r *redisRepository) Enqueue(ctx context.Context, input EnqueueInput) (*EnqueueOutput, error) {
	job := input.Job
	if job == nil {
		return nil, errors.InvalidArgument("job cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("ID", job.ID, vb)
	errors.ValidateRequired("CharacterID", job.CharacterID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	if job.RequestedAt.IsZero() {
		job.RequestedAt = r.clock.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal job")
	}
	state, err := json.Marshal(&JobState{
		JobID:       job.ID,
		CharacterID: job.CharacterID,
		Status:      StatusQueued,
		UpdatedAt:   job.RequestedAt,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal job state")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, stateKeyPrefix+job.ID, state, StateTTL)
	depth := pipe.LPush(ctx, queueKey, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to enqueue portrait job")
	}

	return &EnqueueOutput{Job: job, Depth: int(depth.Val())}, nil
}

func (r *redisRepository) Dequeue(ctx context.Context, input DequeueInput) (*DequeueOutput, error) {
	timeout := input.Timeout
	if timeout <= 0 {
		timeout = defaultDequeueTimeout
	}

	res, err := r.client.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("no portrait jobs queued")
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "dequeue canceled")
		}
		return nil, errors.Wrapf(err, "failed to dequeue portrait job")
	}

	// BRPOP answers [key, value]
	if len(res) != 2 {
		return nil, errors.Internalf("unexpected BRPOP reply of length %d", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal portrait job")
	}
	return &DequeueOutput{Job: &job}, nil
}

func (r *redisRepository) SetState(ctx context.Context, input SetStateInput) error {
	if input.State == nil || input.State.JobID == "" {
		return errors.InvalidArgument("job state with an ID is required")
	}
	input.State.UpdatedAt = r.clock.Now()

	data, err := json.Marshal(input.State)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal job state")
	}
	if err := r.client.Set(ctx, stateKeyPrefix+input.State.JobID, data, StateTTL).Err(); err != nil {
		return errors.Wrapf(err, "failed to store job state")
	}
	return nil
}

func (r *redisRepository) GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error) {
	if input.JobID == "" {
		return nil, errors.InvalidArgument("job ID cannot be empty")
	}

	raw, err := r.client.Get(ctx, stateKeyPrefix+input.JobID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("portrait job %s not found", input.JobID)
		}
		return nil, errors.Wrapf(err, "failed to get job state")
	}

	var state JobState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal job state")
	}
	return &GetStateOutput{State: &state}, nil
}
