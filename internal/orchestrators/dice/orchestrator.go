// Package dice implements the dice orchestrator for handling dice roll sessions
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/dabidoe/character-foundry/internal/orchestrators/dice Service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dabidoe/character-foundry/internal/dice"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
	dicesession "github.com/dabidoe/character-foundry/internal/repositories/dice_session"
)

const (
	// ContextAbilityScores is the session context for ability score rolling
	ContextAbilityScores = "ability_scores"

	// DefaultSessionTTL for dice sessions
	DefaultSessionTTL = 15 * time.Minute

	// Dice rolling methods
	MethodStandard = "4d6_drop_lowest"
	MethodClassic  = "3d6"
	MethodHeroic   = "4d6_reroll_1s"

	// AbilityScoreNotation is the standard ability score roll
	AbilityScoreNotation = "4d6"

	abilityScoreCount = 6
)

// Service defines the interface for dice operations
type Service interface {
	// Generic dice rolling
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)
	GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error)
	ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error)

	// Specialized ability score rolling for character creation
	RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	DiceSessionRepo dicesession.Repository
	IDGenerator     idgen.Generator
	// Roller defaults to the toolkit's crypto roller
	Roller *dice.Roller
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.DiceSessionRepo == nil {
		vb.RequiredField("DiceSessionRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	diceSessionRepo dicesession.Repository
	idGen           idgen.Generator
	roller          *dice.Roller
	clock           clock.Clock
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.New(nil)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &orchestrator{
		diceSessionRepo: cfg.DiceSessionRepo,
		idGen:           cfg.IDGenerator,
		roller:          roller,
		clock:           clk,
	}, nil
}

// dropLowest splits rolls into kept and dropped dice
func dropLowest(rolls []int, n int) (kept, dropped []int) {
	if n <= 0 || len(rolls) <= n {
		return rolls, nil
	}
	sorted := append([]int(nil), rolls...)
	sort.Ints(sorted)
	return sorted[n:], sorted[:n]
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// RollDice rolls dice using the specified notation and stores the result in a session
func (o *orchestrator) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}
	if input.Notation == "" {
		return nil, errors.InvalidArgument("dice notation is required")
	}

	expr, err := dice.Parse(input.Notation)
	if err != nil {
		return nil, err
	}

	result, err := o.roller.RollExpression(expr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll dice")
	}

	roll := o.newRoll(result, input.Description)

	// 4d6 in the ability score context is the standard drop-lowest roll
	if input.Context == ContextAbilityScores && expr.Count == 4 && expr.Sides == 6 {
		kept, dropped := dropLowest(result.Rolls, 1)
		roll.Dice = kept
		roll.Dropped = dropped
		roll.DiceTotal = sum(kept)
		roll.Total = roll.DiceTotal + roll.Modifier
		roll.Breakdown = fmt.Sprintf("%s (dropped %d)", dice.Breakdown(kept, roll.Modifier, roll.Total), dropped[0])
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	appendOutput, err := o.diceSessionRepo.Append(ctx, dicesession.AppendInput{
		EntityID: input.EntityID,
		Context:  input.Context,
		Rolls:    []dicesession.DiceRoll{*roll},
		TTL:      ttl,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store dice roll")
	}

	slog.InfoContext(ctx, "Dice rolled successfully",
		"entity_id", input.EntityID,
		"context", input.Context,
		"notation", roll.Notation,
		"total", roll.Total,
		"roll_id", roll.RollID,
	)

	return &RollDiceOutput{
		Roll:    roll,
		Session: appendOutput.Session,
	}, nil
}

func (o *orchestrator) newRoll(result *dice.Result, description string) *dicesession.DiceRoll {
	return &dicesession.DiceRoll{
		RollID:      o.idGen.Generate(),
		Notation:    result.Notation,
		Dice:        result.Rolls,
		DiceTotal:   result.DiceTotal,
		Modifier:    result.Modifier,
		Total:       result.Total,
		Breakdown:   result.Breakdown,
		Description: description,
		RolledAt:    o.clock.Now().UTC(),
	}
}

// GetRollSession retrieves an existing dice roll session
func (o *orchestrator) GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dice session")
	}

	return &GetRollSessionOutput{
		Session: getOutput.Session,
	}, nil
}

// ClearRollSession removes a dice roll session
func (o *orchestrator) ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	deleteOutput, err := o.diceSessionRepo.Delete(ctx, dicesession.DeleteInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete dice session")
	}

	slog.InfoContext(ctx, "Dice session cleared",
		"entity_id", input.EntityID,
		"context", input.Context,
		"rolls_deleted", deleteOutput.RollsDeleted,
	)

	return &ClearRollSessionOutput{
		RollsDeleted: deleteOutput.RollsDeleted,
	}, nil
}

// RollAbilityScores rolls six ability scores and replaces the entity's
// ability score session with them
func (o *orchestrator) RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	method := input.Method
	if method == "" {
		method = MethodStandard
	}

	var roll func() (*dicesession.DiceRoll, error)
	switch method {
	case MethodStandard:
		roll = func() (*dicesession.DiceRoll, error) { return o.rollFourDropLowest(false) }
	case MethodHeroic:
		roll = func() (*dicesession.DiceRoll, error) { return o.rollFourDropLowest(true) }
	case MethodClassic:
		roll = func() (*dicesession.DiceRoll, error) {
			result, err := o.roller.Roll("3d6")
			if err != nil {
				return nil, err
			}
			return o.newRoll(result, ""), nil
		}
	default:
		return nil, errors.InvalidArgumentf("unsupported rolling method: %s", method)
	}

	rolls := make([]*dicesession.DiceRoll, 0, abilityScoreCount)
	rollValues := make([]dicesession.DiceRoll, 0, abilityScoreCount)
	scores := make([]int, 0, abilityScoreCount)
	for i := 0; i < abilityScoreCount; i++ {
		r, err := roll()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll ability score %d", i+1)
		}
		r.Description = fmt.Sprintf("Ability Score %d (%s)", i+1, method)
		rolls = append(rolls, r)
		rollValues = append(rollValues, *r)
		scores = append(scores, r.Total)
	}

	createOutput, err := o.diceSessionRepo.Create(ctx, dicesession.CreateInput{
		EntityID: input.EntityID,
		Context:  ContextAbilityScores,
		Rolls:    rollValues,
		TTL:      DefaultSessionTTL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ability score session")
	}

	slog.InfoContext(ctx, "Ability scores rolled successfully",
		"entity_id", input.EntityID,
		"method", method,
		"scores", scores,
	)

	return &RollAbilityScoresOutput{
		Rolls:   rolls,
		Scores:  scores,
		Session: createOutput.Session,
	}, nil
}

// rollFourDropLowest rolls 4d6 and keeps the highest three. With
// rerollOnes every 1 is rerolled once before dropping.
func (o *orchestrator) rollFourDropLowest(rerollOnes bool) (*dicesession.DiceRoll, error) {
	result, err := o.roller.Roll(AbilityScoreNotation)
	if err != nil {
		return nil, err
	}

	values := append([]int(nil), result.Rolls...)
	if rerollOnes {
		for i, v := range values {
			if v != 1 {
				continue
			}
			again, err := o.roller.Die(6)
			if err != nil {
				return nil, err
			}
			values[i] = again
		}
	}

	kept, dropped := dropLowest(values, 1)
	roll := o.newRoll(result, "")
	roll.Dice = kept
	roll.Dropped = dropped
	roll.DiceTotal = sum(kept)
	roll.Total = roll.DiceTotal
	roll.Breakdown = fmt.Sprintf("%s (dropped %d)", dice.Breakdown(kept, 0, roll.Total), dropped[0])
	return roll, nil
}
