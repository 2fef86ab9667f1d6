// Package character implements the character orchestrator: CRUD over the
// character document plus every gameplay action that reads, resolves and
// writes it back.
package character

//go:generate mockgen -destination=mock/mock_service.go -package=charactermock github.com/dabidoe/character-foundry/internal/orchestrators/character Service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dabidoe/character-foundry/internal/clients/llm"
	"github.com/dabidoe/character-foundry/internal/dice"
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
	characterrepo "github.com/dabidoe/character-foundry/internal/repositories/character"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
	"github.com/dabidoe/character-foundry/internal/rules"
)

const (
	minScore = 1
	maxScore = 30
)

// Service is the character API
type Service interface {
	ListCharacters(ctx context.Context, input *ListCharactersInput) (*ListCharactersOutput, error)
	GetCharacter(ctx context.Context, input *GetCharacterInput) (*GetCharacterOutput, error)
	SearchCharacters(ctx context.Context, input *SearchCharactersInput) (*SearchCharactersOutput, error)
	GetStats(ctx context.Context, input *GetStatsInput) (*GetStatsOutput, error)
	CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*CreateCharacterOutput, error)
	UpdateStats(ctx context.Context, input *UpdateStatsInput) (*UpdateStatsOutput, error)
	DeleteCharacter(ctx context.Context, input *DeleteCharacterInput) (*DeleteCharacterOutput, error)

	// Gameplay
	RollSkill(ctx context.Context, input *RollSkillInput) (*RollSkillOutput, error)
	RollSave(ctx context.Context, input *RollSaveInput) (*RollSaveOutput, error)
	Attack(ctx context.Context, input *AttackInput) (*AttackOutput, error)
	ApplyDamage(ctx context.Context, input *ApplyDamageInput) (*ApplyDamageOutput, error)
	Heal(ctx context.Context, input *HealInput) (*HealOutput, error)
	UseAbility(ctx context.Context, input *UseAbilityInput) (*UseAbilityOutput, error)
	CastSpell(ctx context.Context, input *CastSpellInput) (*CastSpellOutput, error)
	ShortRest(ctx context.Context, input *ShortRestInput) (*ShortRestOutput, error)
	LongRest(ctx context.Context, input *LongRestInput) (*LongRestOutput, error)

	// Inventory
	AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error)
	EquipItem(ctx context.Context, input *EquipItemInput) (*EquipItemOutput, error)
	UnequipItem(ctx context.Context, input *UnequipItemInput) (*UnequipItemOutput, error)
	RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error)
}

// Config holds the dependencies for the character orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	IDGenerator   idgen.Generator

	// ItemRepo resolves library GUIDs for AddItem; nil disables it
	ItemRepo items.Repository
	// LLM writes narratives; nil uses the plain fallback sentences
	LLM llm.Client
	// Roller defaults to the toolkit's crypto roller
	Roller          *dice.Roller
	ItemIDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// Orchestrator implements Service
type Orchestrator struct {
	characterRepo characterrepo.Repository
	itemRepo      items.Repository
	llm           llm.Client
	roller        *dice.Roller
	idGen         idgen.Generator
	itemIDGen     idgen.Generator
}

// New creates a new character orchestrator
func New(cfg *Config) (*Orchestrator, error) {
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
	itemIDGen := cfg.ItemIDGenerator
	if itemIDGen == nil {
		itemIDGen = idgen.NewUUID("item")
	}

	return &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		itemRepo:      cfg.ItemRepo,
		llm:           cfg.LLM,
		roller:        roller,
		idGen:         cfg.IDGenerator,
		itemIDGen:     itemIDGen,
	}, nil
}

var _ Service = (*Orchestrator)(nil)

func (o *Orchestrator) load(ctx context.Context, id string) (*entities.Character, error) {
	if id == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	out, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: id})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.WrapWithCode(err, errors.CodeNotFound, "Character not found")
		}
		return nil, errors.Wrapf(err, "failed to get character %s", id)
	}
	return out.Character, nil
}

func (o *Orchestrator) save(ctx context.Context, c *entities.Character) (*entities.Character, error) {
	out, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: c})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save character %s", c.ID)
	}
	return out.Character, nil
}

// ListCharacters pages the collection, newest first
func (o *Orchestrator) ListCharacters(ctx context.Context, input *ListCharactersInput) (*ListCharactersOutput, error) {
	if input == nil {
		input = &ListCharactersInput{}
	}
	if input.Limit < 0 || input.Skip < 0 {
		return nil, errors.InvalidArgument("limit and skip cannot be negative")
	}

	limit := input.Limit
	if limit == 0 {
		limit = characterrepo.DefaultListLimit
	}

	out, err := o.characterRepo.List(ctx, characterrepo.ListInput{
		UserID: input.UserID,
		Limit:  limit,
		Skip:   input.Skip,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}

	return &ListCharactersOutput{
		Characters: out.Characters,
		Total:      out.Total,
		Limit:      limit,
		Skip:       input.Skip,
	}, nil
}

// GetCharacter returns the document with its computed block
func (o *Orchestrator) GetCharacter(ctx context.Context, input *GetCharacterInput) (*GetCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	return &GetCharacterOutput{Character: c, Computed: rules.Compute(c)}, nil
}

// SearchCharacters matches name, race and class
func (o *Orchestrator) SearchCharacters(ctx context.Context, input *SearchCharactersInput) (*SearchCharactersOutput, error) {
	if input == nil || strings.TrimSpace(input.Query) == "" {
		return nil, errors.InvalidArgument("search query is required")
	}

	out, err := o.characterRepo.Search(ctx, characterrepo.SearchInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search characters")
	}
	return &SearchCharactersOutput{Characters: out.Characters}, nil
}

// GetStats counts characters
func (o *Orchestrator) GetStats(ctx context.Context, _ *GetStatsInput) (*GetStatsOutput, error) {
	out, err := o.characterRepo.Stats(ctx, characterrepo.StatsInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get character stats")
	}
	return &GetStatsOutput{Stats: out}, nil
}

// CreateCharacter fills defaults, validates and stores a new character
func (o *Orchestrator) CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*CreateCharacterOutput, error) {
	if input == nil || input.Character == nil {
		return nil, errors.InvalidArgument("character is required")
	}
	c := input.Character

	if err := validateNewCharacter(c); err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(c.Name)
	if c.ID == "" {
		c.ID = o.idGen.Generate()
	}
	rules.FillDefaults(c)
	for i := range c.Inventory {
		if c.Inventory[i].ID == "" {
			c.Inventory[i].ID = o.itemIDGen.Generate()
		}
	}

	out, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{Character: c})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}

	slog.InfoContext(ctx, "Character created",
		"character_id", out.Character.ID,
		"name", out.Character.Name,
		"class", out.Character.Class,
		"level", out.Character.Level,
	)

	return &CreateCharacterOutput{
		Character: out.Character,
		Computed:  rules.Compute(out.Character),
	}, nil
}

func validateNewCharacter(c *entities.Character) error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("name", strings.TrimSpace(c.Name), vb)
	errors.ValidateRequired("race", c.Race, vb)
	errors.ValidateRequired("class", c.Class, vb)
	if c.Level != 0 {
		errors.ValidateRange("level", c.Level, 1, 20, vb)
	}
	for _, a := range entities.AllAbilities {
		if score := c.Stats.Get(a); score != 0 {
			errors.ValidateRange("stats."+string(a), score, minScore, maxScore, vb)
		}
	}
	if c.HP.Current < 0 || c.HP.Max < 0 || c.HP.Temporary < 0 {
		vb.InvalidField("hp", "hit points cannot be negative")
	}
	if c.HP.Max > 0 && c.HP.Current > c.HP.Max+c.HP.Temporary {
		vb.InvalidField("hp.current", "cannot exceed max plus temporary hit points")
	}
	if c.Exhaustion < 0 || c.Exhaustion > 6 {
		vb.InvalidField("exhaustion", "must be between 0 and 6")
	}

	return vb.Build()
}

// UpdateStats merges new ability scores into the character
func (o *Orchestrator) UpdateStats(ctx context.Context, input *UpdateStatsInput) (*UpdateStatsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if len(input.Stats) == 0 {
		return nil, errors.InvalidArgument("stats are required")
	}

	vb := errors.NewValidationBuilder()
	parsed := make(map[entities.Ability]int, len(input.Stats))
	for key, value := range input.Stats {
		ability, ok := entities.ParseAbility(key)
		if !ok {
			vb.InvalidField(key, "unknown ability")
			continue
		}
		errors.ValidateRange(key, value, minScore, maxScore, vb)
		parsed[ability] = value
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	for ability, value := range parsed {
		c.Stats.Set(ability, value)
	}
	c.Initiative = rules.Initiative(c)
	c.AC = rules.ArmorClass(c)

	saved, err := o.save(ctx, c)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Character stats updated",
		"character_id", saved.ID,
		"stats", parsed,
	)

	return &UpdateStatsOutput{Character: saved, Computed: rules.Compute(saved)}, nil
}

// DeleteCharacter removes a character
func (o *Orchestrator) DeleteCharacter(ctx context.Context, input *DeleteCharacterInput) (*DeleteCharacterOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	out, err := o.characterRepo.Delete(ctx, characterrepo.DeleteInput{ID: input.CharacterID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.WrapWithCode(err, errors.CodeNotFound, "Character not found")
		}
		return nil, errors.Wrapf(err, "failed to delete character %s", input.CharacterID)
	}

	slog.InfoContext(ctx, "Character deleted", "character_id", input.CharacterID)
	return &DeleteCharacterOutput{Deleted: out.Deleted}, nil
}
