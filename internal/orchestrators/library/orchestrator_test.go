package library_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/dabidoe/character-foundry/internal/catalog"
	externalmock "github.com/dabidoe/character-foundry/internal/clients/external/mock"
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
	itemsmock "github.com/dabidoe/character-foundry/internal/repositories/items/mock"
)

const testCatalog = `
items:
  - id: dagger
    name: Dagger
    category: weapon
  - id: rope
    name: Hempen Rope
    category: gear
`

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *itemsmock.MockRepository
	mockSRD  *externalmock.MockClient
	orch     *library.Orchestrator
	ctx      context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = itemsmock.NewMockRepository(s.ctrl)
	s.mockSRD = externalmock.NewMockClient(s.ctrl)
	s.ctx = context.Background()

	cat, err := catalog.Parse([]byte(testCatalog))
	s.Require().NoError(err)

	s.orch, err = library.New(&library.Config{
		ItemRepo: s.mockRepo,
		SRD:      s.mockSRD,
		Catalog:  cat,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) TestNewRequiresRepo() {
	_, err := library.New(&library.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestListItemsDefaultsAndColors() {
	public := true
	s.mockRepo.EXPECT().
		List(s.ctx, items.ListInput{
			Category: entities.CategoryWeapon,
			Rarity:   entities.RarityRare,
			Public:   &public,
			Search:   "flame",
			Limit:    items.DefaultListLimit,
		}).
		Return(&items.ListOutput{
			Items: []*entities.Item{
				{GUID: "tpl-flame-tongue", Name: "Flame Tongue", Rarity: entities.RarityRare},
			},
			Total: 1,
		}, nil)

	out, err := s.orch.ListItems(s.ctx, &library.ListItemsInput{
		Category: "Weapon",
		Rarity:   " rare ",
		Public:   &public,
		Search:   " flame ",
	})
	s.Require().NoError(err)
	s.Equal(1, out.Total)
	s.Equal(items.DefaultListLimit, out.Limit)
	s.Require().Len(out.Items, 1)
	s.Equal("Flame Tongue", out.Items[0].Name)
	s.Equal("#2196f3", out.Items[0].RarityColor)
}

func (s *OrchestratorTestSuite) TestListItemsRejectsNegativePaging() {
	_, err := s.orch.ListItems(s.ctx, &library.ListItemsInput{Limit: -1})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestGetItem() {
	testCases := []struct {
		name      string
		item      *entities.Item
		repoErr   error
		expectErr bool
	}{
		{
			name: "public item",
			item: &entities.Item{GUID: "tpl-dagger", Name: "Dagger", Public: true},
		},
		{
			name:      "private item",
			item:      &entities.Item{GUID: "tpl-dagger", Name: "Dagger"},
			expectErr: true,
		},
		{
			name:      "missing item",
			repoErr:   errors.NotFound("item tpl-dagger not found"),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			if tc.repoErr != nil {
				s.mockRepo.EXPECT().Get(s.ctx, items.GetInput{GUID: "tpl-dagger"}).Return(nil, tc.repoErr)
			} else {
				s.mockRepo.EXPECT().Get(s.ctx, items.GetInput{GUID: "tpl-dagger"}).Return(&items.GetOutput{Item: tc.item}, nil)
			}

			out, err := s.orch.GetItem(s.ctx, &library.GetItemInput{GUID: "tpl-dagger"})
			if tc.expectErr {
				s.Require().Error(err)
				s.True(errors.IsNotFound(err))
				s.Equal("Item not found or not public", errors.GetMessage(err))
				return
			}
			s.Require().NoError(err)
			s.Equal("Dagger", out.Item.Name)
			s.Equal("#9e9e9e", out.Item.RarityColor)
		})
	}
}

func (s *OrchestratorTestSuite) TestImportSRDCountsResults() {
	s.mockSRD.EXPECT().
		ListEquipmentByCategory(s.ctx, "martial-weapons").
		Return([]*entities.Item{
			{GUID: "srd-longsword", Name: "Longsword"},
			{GUID: "srd-rapier", Name: "Rapier"},
			{GUID: "srd-whip", Name: "Whip"},
		}, nil)

	gomock.InOrder(
		s.mockRepo.EXPECT().Upsert(s.ctx, gomock.Any()).Return(&items.UpsertOutput{Created: true}, nil),
		s.mockRepo.EXPECT().Upsert(s.ctx, gomock.Any()).Return(&items.UpsertOutput{Created: false}, nil),
		s.mockRepo.EXPECT().Upsert(s.ctx, gomock.Any()).Return(nil, errors.Internal("disk full")),
	)

	out, err := s.orch.ImportSRD(s.ctx, &library.ImportSRDInput{Categories: []string{"martial-weapons"}})
	s.Require().NoError(err)
	s.Equal(&library.ImportSRDOutput{Fetched: 3, Created: 1, Updated: 1, Failed: 1}, out)
}

func (s *OrchestratorTestSuite) TestImportSRDExternalFailure() {
	s.mockSRD.EXPECT().
		ListEquipment(s.ctx).
		Return(nil, errors.External(nil, "failed to list equipment from D&D 5e API"))

	_, err := s.orch.ImportSRD(s.ctx, nil)
	s.Require().Error(err)
	s.True(errors.IsExternal(err))
}

func (s *OrchestratorTestSuite) TestImportSRDWithoutClient() {
	orch, err := library.New(&library.Config{ItemRepo: s.mockRepo})
	s.Require().NoError(err)

	_, err = orch.ImportSRD(s.ctx, &library.ImportSRDInput{})
	s.True(errors.IsUnavailable(err))
}

func (s *OrchestratorTestSuite) TestSeedCatalog() {
	var seeded []string
	s.mockRepo.EXPECT().
		Upsert(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input items.UpsertInput) (*items.UpsertOutput, error) {
			seeded = append(seeded, input.Item.GUID)
			return &items.UpsertOutput{Item: input.Item, Created: true}, nil
		}).
		Times(2)

	out, err := s.orch.SeedCatalog(s.ctx, &library.SeedCatalogInput{})
	s.Require().NoError(err)
	s.Equal(2, out.Created)
	s.Equal([]string{"tpl-dagger", "tpl-rope"}, seeded)
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
