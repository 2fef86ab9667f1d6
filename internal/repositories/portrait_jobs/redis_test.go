package portraitjobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	portraitjobs "github.com/dabidoe/character-foundry/internal/repositories/portrait_jobs"
	"github.com/dabidoe/character-foundry/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	cleanup func()
	repo    portraitjobs.Repository
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, mr, cleanup := testutils.CreateTestRedis(s.T())
	s.mr = mr
	s.cleanup = cleanup

	repo, err := portraitjobs.NewRedis(&portraitjobs.RedisConfig{
		Client: client,
		Clock:  clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) TestFIFO() {
	for _, id := range []string{"job_1", "job_2"} {
		_, err := s.repo.Enqueue(s.ctx, portraitjobs.EnqueueInput{Job: &portraitjobs.Job{
			ID:          id,
			CharacterID: "char_1",
			Prompt:      "a dwarf",
			Type:        "portrait",
		}})
		s.Require().NoError(err)
	}

	first, err := s.repo.Dequeue(s.ctx, portraitjobs.DequeueInput{Timeout: time.Second})
	s.Require().NoError(err)
	s.Equal("job_1", first.Job.ID)
	s.False(first.Job.RequestedAt.IsZero())

	second, err := s.repo.Dequeue(s.ctx, portraitjobs.DequeueInput{Timeout: time.Second})
	s.Require().NoError(err)
	s.Equal("job_2", second.Job.ID)
}

func (s *RedisRepositoryTestSuite) TestEnqueueMarksQueued() {
	out, err := s.repo.Enqueue(s.ctx, portraitjobs.EnqueueInput{Job: &portraitjobs.Job{ID: "job_1", CharacterID: "char_1"}})
	s.Require().NoError(err)
	s.Equal(1, out.Depth)

	state, err := s.repo.GetState(s.ctx, portraitjobs.GetStateInput{JobID: "job_1"})
	s.Require().NoError(err)
	s.Equal(portraitjobs.StatusQueued, state.State.Status)
	s.Equal("char_1", state.State.CharacterID)
	s.Equal(portraitjobs.StateTTL, s.mr.TTL("portrait:job:job_1"))
}

func (s *RedisRepositoryTestSuite) TestEnqueueValidation() {
	_, err := s.repo.Enqueue(s.ctx, portraitjobs.EnqueueInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Enqueue(s.ctx, portraitjobs.EnqueueInput{Job: &portraitjobs.Job{ID: "job_1"}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestSetState() {
	err := s.repo.SetState(s.ctx, portraitjobs.SetStateInput{State: &portraitjobs.JobState{
		JobID:  "job_1",
		Status: portraitjobs.StatusComplete,
		URL:    "https://cdn.example.com/characters/char_1/portrait.png",
	}})
	s.Require().NoError(err)

	out, err := s.repo.GetState(s.ctx, portraitjobs.GetStateInput{JobID: "job_1"})
	s.Require().NoError(err)
	s.Equal(portraitjobs.StatusComplete, out.State.Status)
	s.Equal("https://cdn.example.com/characters/char_1/portrait.png", out.State.URL)

	_, err = s.repo.GetState(s.ctx, portraitjobs.GetStateInput{JobID: "missing"})
	s.True(errors.IsNotFound(err))

	s.True(errors.IsInvalidArgument(s.repo.SetState(s.ctx, portraitjobs.SetStateInput{})))
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
