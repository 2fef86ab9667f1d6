package character_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	redisclient "github.com/dabidoe/character-foundry/internal/redis"
	character "github.com/dabidoe/character-foundry/internal/repositories/character"
	"github.com/dabidoe/character-foundry/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	client  redisclient.Client
	mr      *miniredis.Miniredis
	cleanup func()
	clock   *clock.Fixed
	repo    character.Repository
	ctx     context.Context
	start   time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.client, s.mr, s.cleanup = testutils.CreateTestRedis(s.T())
	s.start = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.clock = clock.NewFixed(s.start)

	repo, err := character.NewRedis(&character.RedisConfig{
		Client: s.client,
		Clock:  s.clock,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) create(id, userID, name, race, class string) *entities.Character {
	out, err := s.repo.Create(s.ctx, character.CreateInput{Character: &entities.Character{
		ID:     id,
		UserID: userID,
		Name:   name,
		Race:   race,
		Class:  class,
		Level:  1,
	}})
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	return out.Character
}

func (s *RedisRepositoryTestSuite) TestNewRedisRequiresClient() {
	_, err := character.NewRedis(&character.RedisConfig{})
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = character.NewRedis(nil)
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	created := s.create("char_1", "user_1", "Thorin", "Dwarf", "Fighter")
	s.True(created.CreatedAt.Equal(s.start))
	s.True(created.UpdatedAt.Equal(s.start))

	s.True(s.mr.Exists("character:char_1"))
	members, err := s.mr.Members("character:user:user_1")
	s.Require().NoError(err)
	s.Equal([]string{"char_1"}, members)

	out, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal("Thorin", out.Character.Name)
	s.True(out.Character.CreatedAt.Equal(s.start))
}

func (s *RedisRepositoryTestSuite) TestCreateErrors() {
	s.create("char_1", "", "Thorin", "Dwarf", "Fighter")

	testCases := []struct {
		name  string
		input character.CreateInput
		check func(error) bool
	}{
		{name: "nil character", input: character.CreateInput{}, check: errors.IsInvalidArgument},
		{name: "empty id", input: character.CreateInput{Character: &entities.Character{}}, check: errors.IsInvalidArgument},
		{name: "duplicate", input: character.CreateInput{Character: &entities.Character{ID: "char_1"}}, check: errors.IsAlreadyExists},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.repo.Create(s.ctx, tc.input)
			s.Error(err)
			s.True(tc.check(err))
		})
	}
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, character.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, character.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestListNewestFirst() {
	s.create("char_1", "user_1", "A", "Elf", "Wizard")
	s.create("char_2", "user_2", "B", "Human", "Rogue")
	s.create("char_3", "user_1", "C", "Dwarf", "Cleric")

	out, err := s.repo.List(s.ctx, character.ListInput{})
	s.Require().NoError(err)
	s.Equal(3, out.Total)
	s.Equal([]string{"char_3", "char_2", "char_1"}, ids(out.Characters))

	out, err = s.repo.List(s.ctx, character.ListInput{Limit: 1, Skip: 1})
	s.Require().NoError(err)
	s.Equal([]string{"char_2"}, ids(out.Characters))

	out, err = s.repo.List(s.ctx, character.ListInput{UserID: "user_1"})
	s.Require().NoError(err)
	s.Equal(2, out.Total)
	s.Equal([]string{"char_3", "char_1"}, ids(out.Characters))

	out, err = s.repo.List(s.ctx, character.ListInput{UserID: "user_1", Skip: 5})
	s.Require().NoError(err)
	s.Empty(out.Characters)
}

func (s *RedisRepositoryTestSuite) TestListDropsDanglingIndexEntries() {
	s.create("char_1", "", "A", "Elf", "Wizard")
	s.create("char_2", "", "B", "Human", "Rogue")
	s.mr.Del("character:char_1")

	out, err := s.repo.List(s.ctx, character.ListInput{})
	s.Require().NoError(err)
	s.Equal([]string{"char_2"}, ids(out.Characters))

	members, err := s.mr.ZMembers("character:index:created")
	s.Require().NoError(err)
	s.Equal([]string{"char_2"}, members)
}

func (s *RedisRepositoryTestSuite) TestUpdate() {
	created := s.create("char_1", "user_1", "Thorin", "Dwarf", "Fighter")

	created.Name = "Thorin II"
	created.UserID = "user_2"
	created.CreatedAt = time.Time{}
	out, err := s.repo.Update(s.ctx, character.UpdateInput{Character: created})
	s.Require().NoError(err)
	s.True(out.Character.CreatedAt.Equal(s.start))
	s.True(out.Character.UpdatedAt.Equal(s.start.Add(time.Minute)))

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal("Thorin II", got.Character.Name)

	s.False(s.mr.Exists("character:user:user_1"))
	members, err := s.mr.Members("character:user:user_2")
	s.Require().NoError(err)
	s.Equal([]string{"char_1"}, members)

	_, err = s.repo.Update(s.ctx, character.UpdateInput{Character: &entities.Character{ID: "missing"}})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestModify() {
	s.create("char_1", "user_1", "Thorin", "Dwarf", "Fighter")

	out, err := s.repo.Modify(s.ctx, character.ModifyInput{
		ID: "char_1",
		Apply: func(c *entities.Character) error {
			c.Images.Portrait = "https://cdn.test/thorin.png"
			c.ID = "char_other"
			c.CreatedAt = time.Time{}
			return nil
		},
	})
	s.Require().NoError(err)
	s.Equal("char_1", out.Character.ID)
	s.True(out.Character.CreatedAt.Equal(s.start))
	s.True(out.Character.UpdatedAt.Equal(s.start.Add(time.Minute)))

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal("https://cdn.test/thorin.png", got.Character.Images.Portrait)
	s.Equal("Thorin", got.Character.Name)
	s.False(s.mr.Exists("character:char_other"))
}

func (s *RedisRepositoryTestSuite) TestModifyRetriesAfterConcurrentWrite() {
	s.create("char_1", "", "Thorin", "Dwarf", "Fighter")

	calls := 0
	out, err := s.repo.Modify(s.ctx, character.ModifyInput{
		ID: "char_1",
		Apply: func(c *entities.Character) error {
			calls++
			if calls == 1 {
				other := *c
				other.HP = entities.HitPoints{Current: 4, Max: 30}
				if _, err := s.repo.Update(s.ctx, character.UpdateInput{Character: &other}); err != nil {
					return err
				}
			}
			c.Images.Battle = "https://cdn.test/battle.png"
			return nil
		},
	})
	s.Require().NoError(err)
	s.Equal(2, calls)
	s.Equal(4, out.Character.HP.Current)

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal(entities.HitPoints{Current: 4, Max: 30}, got.Character.HP)
	s.Equal("https://cdn.test/battle.png", got.Character.Images.Battle)
}

func (s *RedisRepositoryTestSuite) TestModifyErrors() {
	s.create("char_1", "", "Thorin", "Dwarf", "Fighter")

	_, err := s.repo.Modify(s.ctx, character.ModifyInput{
		ID:    "missing",
		Apply: func(*entities.Character) error { return nil },
	})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Modify(s.ctx, character.ModifyInput{ID: "char_1"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Modify(s.ctx, character.ModifyInput{
		ID: "char_1",
		Apply: func(c *entities.Character) error {
			c.Name = "Changed"
			return errors.FailedPrecondition("not allowed")
		},
	})
	s.True(errors.IsFailedPrecondition(err))

	got, err := s.repo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal("Thorin", got.Character.Name)
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	s.create("char_1", "user_1", "Thorin", "Dwarf", "Fighter")

	out, err := s.repo.Delete(s.ctx, character.DeleteInput{ID: "char_1"})
	s.Require().NoError(err)
	s.True(out.Deleted)
	s.False(s.mr.Exists("character:char_1"))
	s.False(s.mr.Exists("character:user:user_1"))

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{ID: "char_1"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestSearch() {
	s.create("char_1", "", "Thorin", "Dwarf", "Fighter")
	s.create("char_2", "", "Elara", "Elf", "Wizard")
	s.create("char_3", "", "Gimli", "dwarf", "Barbarian")

	testCases := []struct {
		name     string
		query    string
		limit    int
		expected []string
	}{
		{name: "race case-insensitive", query: "DWARF", expected: []string{"char_3", "char_1"}},
		{name: "class substring", query: "wiz", expected: []string{"char_2"}},
		{name: "name", query: "thor", expected: []string{"char_1"}},
		{name: "limit", query: "r", limit: 1, expected: []string{"char_3"}},
		{name: "no match", query: "orc", expected: []string{}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.repo.Search(s.ctx, character.SearchInput{Query: tc.query, Limit: tc.limit})
			s.Require().NoError(err)
			s.Equal(tc.expected, ids(out.Characters))
		})
	}

	_, err := s.repo.Search(s.ctx, character.SearchInput{Query: "  "})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestSearchAcrossBatchesWithDanglingEntries() {
	for i := 1; i <= 110; i++ {
		s.create(fmt.Sprintf("char_%03d", i), "", fmt.Sprintf("Hero %d", i), "Human", "Fighter")
	}
	// the ten newest documents vanish, leaving their index entries behind
	for i := 101; i <= 110; i++ {
		s.mr.Del(fmt.Sprintf("character:char_%03d", i))
	}

	out, err := s.repo.Search(s.ctx, character.SearchInput{Query: "hero", Limit: 200})
	s.Require().NoError(err)
	s.Len(out.Characters, 100)
	s.Equal("char_100", out.Characters[0].ID)
	s.Equal("char_001", out.Characters[99].ID)

	members, err := s.mr.ZMembers("character:index:created")
	s.Require().NoError(err)
	s.Len(members, 100)
}

func (s *RedisRepositoryTestSuite) TestStats() {
	s.create("char_1", "", "A", "Elf", "Wizard")
	s.clock.Advance(48 * time.Hour)
	s.create("char_2", "", "B", "Human", "Rogue")

	out, err := s.repo.Stats(s.ctx, character.StatsInput{})
	s.Require().NoError(err)
	s.Equal(2, out.Total)
	s.Equal(1, out.CreatedLast24h)
}

func ids(chars []*entities.Character) []string {
	out := make([]string, 0, len(chars))
	for _, c := range chars {
		out = append(out, c.ID)
	}
	return out
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
