// Package rules derives D&D 5e values from a character document. Every
// function is pure: inputs are never mutated unless the name says so
// (Apply*, *Rest, UseSpellSlot) and nothing performs I/O.
package rules

import (
	"github.com/dabidoe/character-foundry/internal/entities"
)

// AbilityModifier is floor((score-10)/2)
func AbilityModifier(score int) int {
	return floorDiv(score-10, 2)
}

// ProficiencyBonus returns the stored bonus when set, otherwise derives it
// from level.
func ProficiencyBonus(c *entities.Character) int {
	if c.ProficiencyBonus != 0 {
		return c.ProficiencyBonus
	}
	return ProficiencyForLevel(c.Level)
}

// ProficiencyForLevel is 2 + floor((level-1)/4)
func ProficiencyForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}

// Modifier returns the modifier of one of the character's abilities
func Modifier(c *entities.Character, ability entities.Ability) int {
	return AbilityModifier(c.Stats.Get(ability))
}

// SkillValue is mod + tier * proficiency. Skills absent from the document
// use their standard ability with no proficiency.
func SkillValue(c *entities.Character, skill entities.Skill) int {
	ability, tier := skillEntry(c, skill)
	return Modifier(c, ability) + int(tier)*ProficiencyBonus(c)
}

func skillEntry(c *entities.Character, skill entities.Skill) (entities.Ability, entities.ProficiencyTier) {
	entry, ok := c.Skills[skill]
	ability := entry.Ability
	if !ok || !ability.Valid() {
		ability = entities.SkillAbilities[skill]
	}
	return ability, entry.Proficiency
}

// SavingThrowValue is mod plus proficiency when proficient
func SavingThrowValue(c *entities.Character, ability entities.Ability) int {
	v := Modifier(c, ability)
	if c.SavingThrows[ability].Proficient {
		v += ProficiencyBonus(c)
	}
	return v
}

// SpellSaveDC returns 8 + prof + casting mod, or false without spellcasting
func SpellSaveDC(c *entities.Character) (int, bool) {
	if !castingEnabled(c) {
		return 0, false
	}
	return 8 + ProficiencyBonus(c) + Modifier(c, c.Spellcasting.Ability), true
}

// SpellAttackBonus returns prof + casting mod, or false without spellcasting
func SpellAttackBonus(c *entities.Character) (int, bool) {
	if !castingEnabled(c) {
		return 0, false
	}
	return ProficiencyBonus(c) + Modifier(c, c.Spellcasting.Ability), true
}

func castingEnabled(c *entities.Character) bool {
	return c.Spellcasting != nil && c.Spellcasting.Enabled && c.Spellcasting.Ability.Valid()
}

// Initiative is the dexterity modifier
func Initiative(c *entities.Character) int {
	return Modifier(c, entities.AbilityDexterity)
}

// PassivePerception is 10 + the perception skill value
func PassivePerception(c *entities.Character) int {
	return 10 + SkillValue(c, entities.SkillPerception)
}

// Computed is the derived block returned next to a character
type Computed struct {
	Modifiers         map[entities.Ability]int `json:"modifiers"`
	ProficiencyBonus  int                      `json:"proficiencyBonus"`
	Skills            map[entities.Skill]int   `json:"skills"`
	SavingThrows      map[entities.Ability]int `json:"savingThrows"`
	Initiative        int                      `json:"initiative"`
	PassivePerception int                      `json:"passivePerception"`
	SpellSaveDC       *int                     `json:"spellSaveDC,omitempty"`
	SpellAttackBonus  *int                     `json:"spellAttackBonus,omitempty"`
	ArmorClass        int                      `json:"armorClass"`
	CarriedWeight     float64                  `json:"carriedWeight"`
	Encumbrance       EncumbranceStatus        `json:"encumbrance"`
}

// Compute derives every computed value of c
func Compute(c *entities.Character) *Computed {
	out := &Computed{
		Modifiers:         make(map[entities.Ability]int, len(entities.AllAbilities)),
		ProficiencyBonus:  ProficiencyBonus(c),
		Skills:            make(map[entities.Skill]int, len(entities.SkillAbilities)),
		SavingThrows:      make(map[entities.Ability]int, len(entities.AllAbilities)),
		Initiative:        Initiative(c),
		PassivePerception: PassivePerception(c),
		ArmorClass:        ArmorClass(c),
		CarriedWeight:     CarriedWeight(c.Inventory),
	}

	for _, a := range entities.AllAbilities {
		out.Modifiers[a] = Modifier(c, a)
		out.SavingThrows[a] = SavingThrowValue(c, a)
	}
	for skill := range entities.SkillAbilities {
		out.Skills[skill] = SkillValue(c, skill)
	}
	// custom skills stored on the document
	for skill := range c.Skills {
		if _, ok := out.Skills[skill]; !ok {
			out.Skills[skill] = SkillValue(c, skill)
		}
	}

	if dc, ok := SpellSaveDC(c); ok {
		out.SpellSaveDC = &dc
	}
	if atk, ok := SpellAttackBonus(c); ok {
		out.SpellAttackBonus = &atk
	}

	out.Encumbrance = Encumbrance(c.Stats.Str, out.CarriedWeight)
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
