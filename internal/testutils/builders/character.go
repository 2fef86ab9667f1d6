// Package builders provides test data builders for creating test fixtures
package builders

import (
	"time"

	"github.com/dabidoe/character-foundry/internal/entities"
)

// CharacterBuilder provides a fluent interface for building test characters
type CharacterBuilder struct {
	character *entities.Character
}

// NewCharacterBuilder creates a level 1 human fighter with average scores
func NewCharacterBuilder() *CharacterBuilder {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &CharacterBuilder{
		character: &entities.Character{
			ID:    "char-test-123",
			Name:  "Test Character",
			Race:  "Human",
			Class: "Fighter",
			Level: 1,
			Stats: entities.AbilityScores{Str: 10, Dex: 10, Con: 10, Int: 10, Wis: 10, Cha: 10},
			HP:    entities.HitPoints{Current: 10, Max: 10},
			AC:    10,
			Speed: 30,
			Resources: entities.Resources{
				HitDice: entities.HitDice{Type: "d10", Current: 1, Max: 1},
			},
			Skills:       map[entities.Skill]entities.SkillProficiency{},
			SavingThrows: map[entities.Ability]entities.SavingThrowProficiency{},
			CurrentState: entities.MoodDefault,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

// WithID sets the character ID
func (b *CharacterBuilder) WithID(id string) *CharacterBuilder {
	b.character.ID = id
	return b
}

// WithUserID sets the owning user
func (b *CharacterBuilder) WithUserID(userID string) *CharacterBuilder {
	b.character.UserID = userID
	return b
}

// WithName sets the character name
func (b *CharacterBuilder) WithName(name string) *CharacterBuilder {
	b.character.Name = name
	return b
}

// WithClass sets class and level and resizes the hit dice pool
func (b *CharacterBuilder) WithClass(class string, level int) *CharacterBuilder {
	b.character.Class = class
	b.character.Level = level
	b.character.Resources.HitDice.Current = level
	b.character.Resources.HitDice.Max = level
	return b
}

// WithStats sets all six ability scores
func (b *CharacterBuilder) WithStats(str, dex, con, intel, wis, cha int) *CharacterBuilder {
	b.character.Stats = entities.AbilityScores{Str: str, Dex: dex, Con: con, Int: intel, Wis: wis, Cha: cha}
	return b
}

// WithHP sets current, max and temporary hit points
func (b *CharacterBuilder) WithHP(current, maxHP, temporary int) *CharacterBuilder {
	b.character.HP = entities.HitPoints{Current: current, Max: maxHP, Temporary: temporary}
	return b
}

// WithHitDice sets the hit dice pool
func (b *CharacterBuilder) WithHitDice(dieType string, current, maxDice int) *CharacterBuilder {
	b.character.Resources.HitDice = entities.HitDice{Type: dieType, Current: current, Max: maxDice}
	return b
}

// WithSkill sets a skill proficiency using the standard ability
func (b *CharacterBuilder) WithSkill(skill entities.Skill, tier entities.ProficiencyTier) *CharacterBuilder {
	b.character.Skills[skill] = entities.SkillProficiency{
		Ability:     entities.SkillAbilities[skill],
		Proficiency: tier,
	}
	return b
}

// WithSaveProficiency marks saving throws as proficient
func (b *CharacterBuilder) WithSaveProficiency(abilities ...entities.Ability) *CharacterBuilder {
	for _, a := range abilities {
		b.character.SavingThrows[a] = entities.SavingThrowProficiency{Proficient: true}
	}
	return b
}

// WithAbility adds a class ability
func (b *CharacterBuilder) WithAbility(ability entities.ClassAbility) *CharacterBuilder {
	b.character.Abilities = append(b.character.Abilities, ability)
	return b
}

// WithSpellcasting sets the spell block
func (b *CharacterBuilder) WithSpellcasting(sc *entities.Spellcasting) *CharacterBuilder {
	b.character.Spellcasting = sc
	return b
}

// WithItem adds an inventory item
func (b *CharacterBuilder) WithItem(item entities.Item) *CharacterBuilder {
	b.character.Inventory = append(b.character.Inventory, item)
	return b
}

// WithExhaustion sets the exhaustion level
func (b *CharacterBuilder) WithExhaustion(level int) *CharacterBuilder {
	b.character.Exhaustion = level
	return b
}

// WithHistory appends conversation messages
func (b *CharacterBuilder) WithHistory(messages ...entities.ConversationMessage) *CharacterBuilder {
	b.character.ConversationHistory = append(b.character.ConversationHistory, messages...)
	return b
}

// WithPersonality sets background and personality text
func (b *CharacterBuilder) WithPersonality(background, personality string) *CharacterBuilder {
	b.character.Background = background
	b.character.Personality = personality
	return b
}

// Build returns the character
func (b *CharacterBuilder) Build() *entities.Character {
	return b.character
}
