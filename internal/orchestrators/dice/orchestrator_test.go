package dice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/dabidoe/character-foundry/internal/dice"
	"github.com/dabidoe/character-foundry/internal/errors"
	dicesvc "github.com/dabidoe/character-foundry/internal/orchestrators/dice"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
	dicesession "github.com/dabidoe/character-foundry/internal/repositories/dice_session"
	dicesessionmock "github.com/dabidoe/character-foundry/internal/repositories/dice_session/mock"
)

// scriptedRoller replays values and then returns 1
type scriptedRoller struct {
	values []int
}

func (r *scriptedRoller) Roll(size int) (int, error) {
	if len(r.values) == 0 {
		return 1, nil
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v, nil
}

func (r *scriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i], _ = r.Roll(size)
	}
	return out, nil
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *dicesessionmock.MockRepository
	roller   *scriptedRoller
	clock    *clock.Fixed
	svc      dicesvc.Service
	ctx      context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = dicesessionmock.NewMockRepository(s.ctrl)
	s.roller = &scriptedRoller{}
	s.clock = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	svc, err := dicesvc.NewOrchestrator(&dicesvc.Config{
		DiceSessionRepo: s.mockRepo,
		IDGenerator:     idgen.NewSequential("roll"),
		Roller:          dice.New(s.roller),
		Clock:           s.clock,
	})
	s.Require().NoError(err)
	s.svc = svc
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidates() {
	_, err := dicesvc.NewOrchestrator(&dicesvc.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = dicesvc.NewOrchestrator(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestRollDiceAppendsToSession() {
	s.roller.values = []int{4, 5}

	s.mockRepo.EXPECT().
		Append(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input dicesession.AppendInput) (*dicesession.AppendOutput, error) {
			s.Equal("char_1", input.EntityID)
			s.Equal("combat", input.Context)
			s.Equal(dicesvc.DefaultSessionTTL, input.TTL)
			s.Require().Len(input.Rolls, 1)
			s.Equal(12, input.Rolls[0].Total)
			return &dicesession.AppendOutput{Session: &dicesession.DiceSession{
				EntityID: input.EntityID,
				Context:  input.Context,
				Rolls:    input.Rolls,
			}}, nil
		})

	out, err := s.svc.RollDice(s.ctx, &dicesvc.RollDiceInput{
		EntityID:    "char_1",
		Context:     "combat",
		Notation:    "2d6+3",
		Description: "Greatsword",
	})
	s.Require().NoError(err)

	s.Equal("roll_1", out.Roll.RollID)
	s.Equal("2d6+3", out.Roll.Notation)
	s.Equal([]int{4, 5}, out.Roll.Dice)
	s.Equal(9, out.Roll.DiceTotal)
	s.Equal(3, out.Roll.Modifier)
	s.Equal(12, out.Roll.Total)
	s.Equal("4 + 5 + 3 = 12", out.Roll.Breakdown)
	s.Equal("Greatsword", out.Roll.Description)
	s.Equal(s.clock.Now(), out.Roll.RolledAt)
	s.Len(out.Session.Rolls, 1)
}

func (s *OrchestratorTestSuite) TestRollDiceAbilityContextDropsLowest() {
	s.roller.values = []int{3, 6, 1, 5}

	s.mockRepo.EXPECT().
		Append(s.ctx, gomock.Any()).
		Return(&dicesession.AppendOutput{Session: &dicesession.DiceSession{}}, nil)

	out, err := s.svc.RollDice(s.ctx, &dicesvc.RollDiceInput{
		EntityID: "char_1",
		Context:  dicesvc.ContextAbilityScores,
		Notation: "4d6",
	})
	s.Require().NoError(err)
	s.Equal([]int{3, 5, 6}, out.Roll.Dice)
	s.Equal([]int{1}, out.Roll.Dropped)
	s.Equal(14, out.Roll.Total)
	s.Equal("3 + 5 + 6 = 14 (dropped 1)", out.Roll.Breakdown)
}

func (s *OrchestratorTestSuite) TestRollDiceOtherContextKeepsAllDice() {
	s.roller.values = []int{3, 6, 1, 5}

	s.mockRepo.EXPECT().
		Append(s.ctx, gomock.Any()).
		Return(&dicesession.AppendOutput{Session: &dicesession.DiceSession{}}, nil)

	out, err := s.svc.RollDice(s.ctx, &dicesvc.RollDiceInput{
		EntityID: "char_1",
		Context:  "damage",
		Notation: "4d6",
	})
	s.Require().NoError(err)
	s.Len(out.Roll.Dice, 4)
	s.Empty(out.Roll.Dropped)
	s.Equal(15, out.Roll.Total)
}

func (s *OrchestratorTestSuite) TestRollDiceValidation() {
	testCases := []struct {
		name  string
		input *dicesvc.RollDiceInput
	}{
		{name: "nil input", input: nil},
		{name: "missing entity", input: &dicesvc.RollDiceInput{Context: "c", Notation: "1d6"}},
		{name: "missing context", input: &dicesvc.RollDiceInput{EntityID: "e", Notation: "1d6"}},
		{name: "missing notation", input: &dicesvc.RollDiceInput{EntityID: "e", Context: "c"}},
		{name: "bad notation", input: &dicesvc.RollDiceInput{EntityID: "e", Context: "c", Notation: "banana"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.RollDice(s.ctx, tc.input)
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *OrchestratorTestSuite) TestRollDiceRepositoryError() {
	s.mockRepo.EXPECT().
		Append(s.ctx, gomock.Any()).
		Return(nil, errors.Internal("redis down"))

	_, err := s.svc.RollDice(s.ctx, &dicesvc.RollDiceInput{EntityID: "e", Context: "c", Notation: "1d20"})
	s.Require().Error(err)
	s.True(errors.IsInternal(err))
}

func (s *OrchestratorTestSuite) TestGetRollSession() {
	session := &dicesession.DiceSession{EntityID: "e", Context: "c"}
	s.mockRepo.EXPECT().
		Get(s.ctx, dicesession.GetInput{EntityID: "e", Context: "c"}).
		Return(&dicesession.GetOutput{Session: session}, nil)

	out, err := s.svc.GetRollSession(s.ctx, &dicesvc.GetRollSessionInput{EntityID: "e", Context: "c"})
	s.Require().NoError(err)
	s.Same(session, out.Session)
}

func (s *OrchestratorTestSuite) TestGetRollSessionNotFound() {
	s.mockRepo.EXPECT().
		Get(s.ctx, gomock.Any()).
		Return(nil, errors.NotFound("dice session not found"))

	_, err := s.svc.GetRollSession(s.ctx, &dicesvc.GetRollSessionInput{EntityID: "e", Context: "c"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestClearRollSession() {
	s.mockRepo.EXPECT().
		Delete(s.ctx, dicesession.DeleteInput{EntityID: "e", Context: "c"}).
		Return(&dicesession.DeleteOutput{RollsDeleted: 3}, nil)

	out, err := s.svc.ClearRollSession(s.ctx, &dicesvc.ClearRollSessionInput{EntityID: "e", Context: "c"})
	s.Require().NoError(err)
	s.Equal(3, out.RollsDeleted)
}

func (s *OrchestratorTestSuite) TestRollAbilityScoresStandard() {
	s.roller.values = []int{
		6, 6, 6, 1,
		5, 4, 3, 2,
		1, 1, 1, 1,
		6, 5, 4, 3,
		2, 2, 2, 2,
		3, 4, 5, 6,
	}

	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input dicesession.CreateInput) (*dicesession.CreateOutput, error) {
			s.Equal(dicesvc.ContextAbilityScores, input.Context)
			s.Len(input.Rolls, 6)
			return &dicesession.CreateOutput{Session: &dicesession.DiceSession{Rolls: input.Rolls}}, nil
		})

	out, err := s.svc.RollAbilityScores(s.ctx, &dicesvc.RollAbilityScoresInput{EntityID: "char_1"})
	s.Require().NoError(err)
	s.Equal([]int{18, 12, 3, 15, 6, 15}, out.Scores)
	s.Equal([]int{1}, out.Rolls[0].Dropped)
	s.Equal("Ability Score 1 (4d6_drop_lowest)", out.Rolls[0].Description)
}

func (s *OrchestratorTestSuite) TestRollAbilityScoresHeroicRerollsOnes() {
	s.roller.values = []int{1, 6, 6, 2, 5}

	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		Return(&dicesession.CreateOutput{Session: &dicesession.DiceSession{}}, nil)

	out, err := s.svc.RollAbilityScores(s.ctx, &dicesvc.RollAbilityScoresInput{
		EntityID: "char_1",
		Method:   dicesvc.MethodHeroic,
	})
	s.Require().NoError(err)
	s.Equal(17, out.Scores[0])
	s.Equal([]int{2}, out.Rolls[0].Dropped)
}

func (s *OrchestratorTestSuite) TestRollAbilityScoresClassic() {
	s.roller.values = []int{6, 6, 6}

	s.mockRepo.EXPECT().
		Create(s.ctx, gomock.Any()).
		Return(&dicesession.CreateOutput{Session: &dicesession.DiceSession{}}, nil)

	out, err := s.svc.RollAbilityScores(s.ctx, &dicesvc.RollAbilityScoresInput{
		EntityID: "char_1",
		Method:   dicesvc.MethodClassic,
	})
	s.Require().NoError(err)
	s.Equal(18, out.Scores[0])
	s.Empty(out.Rolls[0].Dropped)
	s.Equal(3, out.Scores[1])
}

func (s *OrchestratorTestSuite) TestRollAbilityScoresUnknownMethod() {
	_, err := s.svc.RollAbilityScores(s.ctx, &dicesvc.RollAbilityScoresInput{
		EntityID: "char_1",
		Method:   "point_buy",
	})
	s.True(errors.IsInvalidArgument(err))
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
