package rules

import (
	"strings"

	"github.com/dabidoe/character-foundry/internal/entities"
)

const (
	defaultSpeed = 30
	defaultScore = 10
	maxLevel     = 20
)

// ClassInfo is the creation data for a class
type ClassInfo struct {
	HitDie          string
	SavingThrows    []entities.Ability
	CastingAbility  entities.Ability
	PrimaryAbility  entities.Ability
	SpellcasterType entities.CasterType
}

var classes = map[string]ClassInfo{
	"barbarian": {HitDie: "d12", PrimaryAbility: entities.AbilityStrength,
		SavingThrows: []entities.Ability{entities.AbilityStrength, entities.AbilityConstitution}},
	"bard": {HitDie: "d8", PrimaryAbility: entities.AbilityCharisma, CastingAbility: entities.AbilityCharisma,
		SavingThrows: []entities.Ability{entities.AbilityDexterity, entities.AbilityCharisma}},
	"cleric": {HitDie: "d8", PrimaryAbility: entities.AbilityWisdom, CastingAbility: entities.AbilityWisdom,
		SavingThrows: []entities.Ability{entities.AbilityWisdom, entities.AbilityCharisma}},
	"druid": {HitDie: "d8", PrimaryAbility: entities.AbilityWisdom, CastingAbility: entities.AbilityWisdom,
		SavingThrows: []entities.Ability{entities.AbilityIntelligence, entities.AbilityWisdom}},
	"fighter": {HitDie: "d10", PrimaryAbility: entities.AbilityStrength,
		SavingThrows: []entities.Ability{entities.AbilityStrength, entities.AbilityConstitution}},
	"monk": {HitDie: "d8", PrimaryAbility: entities.AbilityDexterity,
		SavingThrows: []entities.Ability{entities.AbilityStrength, entities.AbilityDexterity}},
	"paladin": {HitDie: "d10", PrimaryAbility: entities.AbilityStrength, CastingAbility: entities.AbilityCharisma,
		SavingThrows: []entities.Ability{entities.AbilityWisdom, entities.AbilityCharisma}},
	"ranger": {HitDie: "d10", PrimaryAbility: entities.AbilityDexterity, CastingAbility: entities.AbilityWisdom,
		SavingThrows: []entities.Ability{entities.AbilityStrength, entities.AbilityDexterity}},
	"rogue": {HitDie: "d8", PrimaryAbility: entities.AbilityDexterity,
		SavingThrows: []entities.Ability{entities.AbilityDexterity, entities.AbilityIntelligence}},
	"sorcerer": {HitDie: "d6", PrimaryAbility: entities.AbilityCharisma, CastingAbility: entities.AbilityCharisma,
		SavingThrows: []entities.Ability{entities.AbilityConstitution, entities.AbilityCharisma}},
	"warlock": {HitDie: "d8", PrimaryAbility: entities.AbilityCharisma, CastingAbility: entities.AbilityCharisma,
		SavingThrows: []entities.Ability{entities.AbilityWisdom, entities.AbilityCharisma}},
	"wizard": {HitDie: "d6", PrimaryAbility: entities.AbilityIntelligence, CastingAbility: entities.AbilityIntelligence,
		SavingThrows: []entities.Ability{entities.AbilityIntelligence, entities.AbilityWisdom}},
}

// LookupClass finds a class by name. Multiclass strings such as
// "Fighter/Wizard" resolve to their first known class.
func LookupClass(name string) (ClassInfo, bool) {
	for _, part := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '/' || r == ' ' || r == ','
	}) {
		if info, ok := classes[part]; ok {
			info.SpellcasterType = CasterTypeForClass(part)
			return info, true
		}
	}
	return ClassInfo{HitDie: "d8"}, false
}

// FillDefaults completes a new character in place: level clamped to 1..20,
// missing scores set to 10, the 18 standard skills, class saving throws, hit
// dice, average hit points, speed, armor class and spell slots for casters.
// Values already present are kept.
func FillDefaults(c *entities.Character) {
	c.Level = min(max(c.Level, 1), maxLevel)

	for _, a := range entities.AllAbilities {
		if c.Stats.Get(a) == 0 {
			c.Stats.Set(a, defaultScore)
		}
	}

	info, _ := LookupClass(c.Class)

	if c.Skills == nil {
		c.Skills = make(map[entities.Skill]entities.SkillProficiency, len(entities.SkillAbilities))
	}
	for skill, ability := range entities.SkillAbilities {
		entry := c.Skills[skill]
		if entry.Ability == "" {
			entry.Ability = ability
		}
		c.Skills[skill] = entry
	}

	if c.SavingThrows == nil {
		c.SavingThrows = make(map[entities.Ability]entities.SavingThrowProficiency, len(entities.AllAbilities))
		for _, a := range info.SavingThrows {
			c.SavingThrows[a] = entities.SavingThrowProficiency{Proficient: true}
		}
	}
	for _, a := range entities.AllAbilities {
		if _, ok := c.SavingThrows[a]; !ok {
			c.SavingThrows[a] = entities.SavingThrowProficiency{}
		}
	}

	hd := &c.Resources.HitDice
	if hd.Type == "" {
		hd.Type = info.HitDie
	}
	if hd.Max == 0 {
		hd.Max = c.Level
		hd.Current = c.Level
	}

	if c.HP.Max == 0 {
		c.HP.Max = StartingHitPoints(HitDieSize(hd.Type), Modifier(c, entities.AbilityConstitution), c.Level)
		if c.HP.Current == 0 {
			c.HP.Current = c.HP.Max
		}
	}
	c.HP.Current = min(c.HP.Current, c.HP.Max+c.HP.Temporary)

	if c.Speed == 0 {
		c.Speed = defaultSpeed
	}
	if c.AC == 0 {
		c.AC = ArmorClass(c)
	}
	c.Initiative = Initiative(c)

	if c.Spellcasting == nil && info.SpellcasterType != entities.CasterNone {
		c.Spellcasting = &entities.Spellcasting{
			Enabled:    true,
			Ability:    info.CastingAbility,
			CasterType: info.SpellcasterType,
		}
	}
	if sc := c.Spellcasting; sc != nil {
		if sc.CasterType == entities.CasterNone {
			sc.CasterType = info.SpellcasterType
		}
		if sc.Ability == "" {
			sc.Ability = info.CastingAbility
		}
		if len(sc.SpellSlots) == 0 && sc.CasterType != entities.CasterNone {
			sc.SpellSlots = SpellSlotsFor(sc.CasterType, c.Level)
		}
	}

	for i := range c.Abilities {
		ab := &c.Abilities[i]
		if ab.RestType == "" {
			ab.RestType = entities.RestLong
		}
		if ab.Limited() && ab.UsesRemaining == 0 {
			ab.UsesRemaining = ab.UsesPerRest
		}
	}

	if c.CurrentState == "" {
		c.CurrentState = entities.MoodDefault
	}
	if c.Abilities == nil {
		c.Abilities = []entities.ClassAbility{}
	}
	if c.Inventory == nil {
		c.Inventory = []entities.Item{}
	}
	if c.TempModifiers == nil {
		c.TempModifiers = []entities.TempModifier{}
	}
}

// StartingHitPoints is the full first hit die plus the rounded-up average for
// every later level, each adding the CON modifier. Never below 1 per level.
func StartingHitPoints(hitDie, conMod, level int) int {
	level = max(level, 1)
	hp := max(1, hitDie+conMod)
	avg := hitDie/2 + 1
	for i := 1; i < level; i++ {
		hp += max(1, avg+conMod)
	}
	return hp
}
