package items_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	clock *clock.Fixed
	repo  items.Repository
	ctx   context.Context
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.clock = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo, err := items.NewSQLite(&items.SQLiteConfig{
		Path:  items.MemoryPath,
		Clock: s.clock,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	s.NoError(s.repo.Close())
}

func boolPtr(v bool) *bool { return &v }

func (s *SQLiteRepositoryTestSuite) seed() {
	library := []*entities.Item{
		{GUID: "longsword", Name: "Longsword", Category: entities.CategoryWeapon, Rarity: entities.RarityCommon, Template: true, Public: true, Description: "A versatile blade"},
		{GUID: "flame-tongue", Name: "Flame Tongue", Category: entities.CategoryWeapon, Rarity: entities.RarityRare, Template: true, Public: true, Description: "Bursts into flame"},
		{GUID: "plate", Name: "Plate Armor", Category: entities.CategoryArmor, Rarity: entities.RarityCommon, Template: true, Public: true},
		{GUID: "secret-ring", Name: "Ring of 100% Secrets", Category: entities.CategoryRing, Rarity: entities.RarityUncommon, UserID: "user_1"},
	}
	for _, item := range library {
		_, err := s.repo.Create(s.ctx, items.CreateInput{Item: item})
		s.Require().NoError(err)
		s.clock.Advance(time.Minute)
	}
}

func (s *SQLiteRepositoryTestSuite) TestCreateAndGet() {
	s.seed()

	out, err := s.repo.Get(s.ctx, items.GetInput{GUID: "longsword"})
	s.Require().NoError(err)
	s.Equal("Longsword", out.Item.Name)
	s.Equal("longsword", out.Item.ID)
	s.True(out.Item.Template)
	s.False(out.Item.CreatedAt.IsZero())

	_, err = s.repo.Get(s.ctx, items.GetInput{GUID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *SQLiteRepositoryTestSuite) TestCreateValidation() {
	s.seed()

	testCases := []struct {
		name  string
		item  *entities.Item
		check func(error) bool
	}{
		{name: "nil item", item: nil, check: errors.IsInvalidArgument},
		{name: "missing guid", item: &entities.Item{Name: "X"}, check: errors.IsInvalidArgument},
		{name: "missing name", item: &entities.Item{GUID: "x"}, check: errors.IsInvalidArgument},
		{name: "duplicate", item: &entities.Item{GUID: "plate", Name: "Plate"}, check: errors.IsAlreadyExists},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.repo.Create(s.ctx, items.CreateInput{Item: tc.item})
			s.Error(err)
			s.True(tc.check(err))
		})
	}
}

func (s *SQLiteRepositoryTestSuite) TestUpsert() {
	out, err := s.repo.Upsert(s.ctx, items.UpsertInput{Item: &entities.Item{GUID: "dagger", Name: "Dagger"}})
	s.Require().NoError(err)
	s.True(out.Created)

	out, err = s.repo.Upsert(s.ctx, items.UpsertInput{Item: &entities.Item{GUID: "dagger", Name: "Dagger +1", Rarity: entities.RarityUncommon}})
	s.Require().NoError(err)
	s.False(out.Created)

	got, err := s.repo.Get(s.ctx, items.GetInput{GUID: "dagger"})
	s.Require().NoError(err)
	s.Equal("Dagger +1", got.Item.Name)
	s.Equal(entities.RarityUncommon, got.Item.Rarity)
}

func (s *SQLiteRepositoryTestSuite) TestList() {
	s.seed()

	testCases := []struct {
		name     string
		input    items.ListInput
		expected []string
		total    int
	}{
		{name: "all newest first", input: items.ListInput{}, expected: []string{"secret-ring", "plate", "flame-tongue", "longsword"}, total: 4},
		{name: "category", input: items.ListInput{Category: entities.CategoryWeapon}, expected: []string{"flame-tongue", "longsword"}, total: 2},
		{name: "rarity", input: items.ListInput{Rarity: entities.RarityCommon}, expected: []string{"plate", "longsword"}, total: 2},
		{name: "public only", input: items.ListInput{Public: boolPtr(true)}, expected: []string{"plate", "flame-tongue", "longsword"}, total: 3},
		{name: "non templates", input: items.ListInput{Template: boolPtr(false)}, expected: []string{"secret-ring"}, total: 1},
		{name: "user", input: items.ListInput{UserID: "user_1"}, expected: []string{"secret-ring"}, total: 1},
		{name: "search name", input: items.ListInput{Search: "SWORD"}, expected: []string{"longsword"}, total: 1},
		{name: "search description", input: items.ListInput{Search: "flame"}, expected: []string{"flame-tongue"}, total: 1},
		{name: "search escapes wildcards", input: items.ListInput{Search: "100%"}, expected: []string{"secret-ring"}, total: 1},
		{name: "page", input: items.ListInput{Limit: 2, Skip: 1}, expected: []string{"plate", "flame-tongue"}, total: 4},
		{name: "no match", input: items.ListInput{Category: entities.CategoryPotion}, expected: []string{}, total: 0},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.repo.List(s.ctx, tc.input)
			s.Require().NoError(err)
			s.Equal(tc.total, out.Total)
			guids := make([]string, 0, len(out.Items))
			for _, item := range out.Items {
				guids = append(guids, item.GUID)
			}
			s.Equal(tc.expected, guids)
		})
	}

	out, err := s.repo.List(s.ctx, items.ListInput{})
	s.Require().NoError(err)
	s.Equal(items.DefaultListLimit, out.Limit)
}

func (s *SQLiteRepositoryTestSuite) TestFileDatabaseReopens() {
	path := filepath.Join(s.T().TempDir(), "library.db")

	repo, err := items.NewSQLite(&items.SQLiteConfig{Path: path})
	s.Require().NoError(err)
	_, err = repo.Create(s.ctx, items.CreateInput{Item: &entities.Item{GUID: "rope", Name: "Rope"}})
	s.Require().NoError(err)
	s.Require().NoError(repo.Close())

	repo, err = items.NewSQLite(&items.SQLiteConfig{Path: path})
	s.Require().NoError(err)
	defer func() { _ = repo.Close() }()

	out, err := repo.Get(s.ctx, items.GetInput{GUID: "rope"})
	s.Require().NoError(err)
	s.Equal("Rope", out.Item.Name)
}

func (s *SQLiteRepositoryTestSuite) TestConfigValidation() {
	_, err := items.NewSQLite(&items.SQLiteConfig{})
	s.True(errors.IsInvalidArgument(err))

	_, err = items.NewSQLite(nil)
	s.True(errors.IsInvalidArgument(err))
}

func TestSQLiteRepositorySuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}
