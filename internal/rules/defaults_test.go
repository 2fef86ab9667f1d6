package rules

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/entities"
)

type DefaultsTestSuite struct {
	suite.Suite
}

func (s *DefaultsTestSuite) TestFillDefaultsWizard() {
	c := &entities.Character{
		Name:  "Elara",
		Class: "Wizard",
		Level: 3,
		Stats: entities.AbilityScores{Str: 8, Dex: 14, Con: 12, Int: 17, Wis: 12},
	}

	FillDefaults(c)

	s.Equal(10, c.Stats.Cha)
	s.Len(c.Skills, 18)
	s.Equal(entities.AbilityIntelligence, c.Skills[entities.SkillArcana].Ability)
	s.Equal(entities.ProficiencyNone, c.Skills[entities.SkillArcana].Proficiency)

	s.True(c.SavingThrows[entities.AbilityIntelligence].Proficient)
	s.True(c.SavingThrows[entities.AbilityWisdom].Proficient)
	s.False(c.SavingThrows[entities.AbilityStrength].Proficient)
	s.Len(c.SavingThrows, 6)

	s.Equal(entities.HitDice{Type: "d6", Current: 3, Max: 3}, c.Resources.HitDice)
	// 6+1, then 4+1 twice
	s.Equal(17, c.HP.Max)
	s.Equal(17, c.HP.Current)
	s.Equal(30, c.Speed)
	s.Equal(12, c.AC)
	s.Equal(2, c.Initiative)

	s.Require().NotNil(c.Spellcasting)
	s.True(c.Spellcasting.Enabled)
	s.Equal(entities.AbilityIntelligence, c.Spellcasting.Ability)
	s.Equal(entities.SpellSlot{Current: 4, Max: 4}, c.Spellcasting.SpellSlots[1])
	s.Equal(entities.SpellSlot{Current: 2, Max: 2}, c.Spellcasting.SpellSlots[2])

	s.Equal(entities.MoodDefault, c.CurrentState)
	s.NotNil(c.Inventory)
	s.NotNil(c.Abilities)
}

func (s *DefaultsTestSuite) TestFillDefaultsKeepsExistingValues() {
	c := &entities.Character{
		Name:  "Grunk",
		Class: "Barbarian",
		Level: 0,
		HP:    entities.HitPoints{Current: 5, Max: 20},
		AC:    14,
		Speed: 40,
		Skills: map[entities.Skill]entities.SkillProficiency{
			entities.SkillAthletics: {Ability: entities.AbilityStrength, Proficiency: entities.ProficiencyExpertise},
		},
		SavingThrows: map[entities.Ability]entities.SavingThrowProficiency{
			entities.AbilityDexterity: {Proficient: true},
		},
		Abilities: []entities.ClassAbility{
			{ID: "rage", Name: "Rage", UsesPerRest: 2},
			{ID: "reckless", Name: "Reckless Attack", UsesPerRest: entities.UnlimitedUses},
		},
	}

	FillDefaults(c)

	s.Equal(1, c.Level)
	s.Equal(entities.HitPoints{Current: 5, Max: 20}, c.HP)
	s.Equal(14, c.AC)
	s.Equal(40, c.Speed)
	s.Equal(entities.ProficiencyExpertise, c.Skills[entities.SkillAthletics].Proficiency)
	s.True(c.SavingThrows[entities.AbilityDexterity].Proficient)
	s.False(c.SavingThrows[entities.AbilityStrength].Proficient)
	s.Equal("d12", c.Resources.HitDice.Type)
	s.Nil(c.Spellcasting)

	s.Equal(2, c.Abilities[0].UsesRemaining)
	s.Equal(entities.RestLong, c.Abilities[0].RestType)
	s.Equal(0, c.Abilities[1].UsesRemaining)
}

func (s *DefaultsTestSuite) TestFillDefaultsClampsCurrentToDerivedMax() {
	c := &entities.Character{
		Name:  "Brom",
		Class: "Fighter",
		Level: 1,
		HP:    entities.HitPoints{Current: 50},
	}

	FillDefaults(c)

	s.Equal(entities.HitPoints{Current: 10, Max: 10}, c.HP)

	c = &entities.Character{
		Name:  "Brom",
		Class: "Fighter",
		Level: 1,
		HP:    entities.HitPoints{Current: 35, Max: 30, Temporary: 5},
	}

	FillDefaults(c)

	s.Equal(35, c.HP.Current)
}

func (s *DefaultsTestSuite) TestLookupClass() {
	info, ok := LookupClass("Fighter/Wizard")
	s.True(ok)
	s.Equal("d10", info.HitDie)

	info, ok = LookupClass("warlock")
	s.True(ok)
	s.Equal(entities.CasterPact, info.SpellcasterType)

	info, ok = LookupClass("Artisan")
	s.False(ok)
	s.Equal("d8", info.HitDie)
}

func (s *DefaultsTestSuite) TestStartingHitPoints() {
	s.Equal(12, StartingHitPoints(10, 2, 1))
	s.Equal(44, StartingHitPoints(10, 2, 5))
	s.Equal(1, StartingHitPoints(6, -6, 1))
	s.Equal(2, StartingHitPoints(6, -6, 2))
}

func TestDefaultsSuite(t *testing.T) {
	suite.Run(t, new(DefaultsTestSuite))
}
