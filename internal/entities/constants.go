package entities

import (
	"strings"
)

// Ability is one of the six ability score keys
type Ability string

// Abilities
const (
	AbilityStrength     Ability = "str"
	AbilityDexterity    Ability = "dex"
	AbilityConstitution Ability = "con"
	AbilityIntelligence Ability = "int"
	AbilityWisdom       Ability = "wis"
	AbilityCharisma     Ability = "cha"
)

// AllAbilities in sheet order
var AllAbilities = []Ability{
	AbilityStrength,
	AbilityDexterity,
	AbilityConstitution,
	AbilityIntelligence,
	AbilityWisdom,
	AbilityCharisma,
}

var abilityNames = map[Ability]string{
	AbilityStrength:     "Strength",
	AbilityDexterity:    "Dexterity",
	AbilityConstitution: "Constitution",
	AbilityIntelligence: "Intelligence",
	AbilityWisdom:       "Wisdom",
	AbilityCharisma:     "Charisma",
}

// Valid reports whether a is a known ability key
func (a Ability) Valid() bool {
	_, ok := abilityNames[a]
	return ok
}

// DisplayName returns "Strength" for "str"
func (a Ability) DisplayName() string {
	if name, ok := abilityNames[a]; ok {
		return name
	}
	return string(a)
}

// ParseAbility accepts keys ("dex") and full names ("Dexterity")
func ParseAbility(s string) (Ability, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if a := Ability(s); a.Valid() {
		return a, true
	}
	for a, name := range abilityNames {
		if strings.ToLower(name) == s {
			return a, true
		}
	}
	return "", false
}

// AbilityScores holds the six scores
type AbilityScores struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Con int `json:"con"`
	Int int `json:"int"`
	Wis int `json:"wis"`
	Cha int `json:"cha"`
}

// Get returns the score for an ability; unknown abilities read as 10
func (s AbilityScores) Get(a Ability) int {
	switch a {
	case AbilityStrength:
		return s.Str
	case AbilityDexterity:
		return s.Dex
	case AbilityConstitution:
		return s.Con
	case AbilityIntelligence:
		return s.Int
	case AbilityWisdom:
		return s.Wis
	case AbilityCharisma:
		return s.Cha
	default:
		return 10
	}
}

// Set assigns a score
func (s *AbilityScores) Set(a Ability, v int) {
	switch a {
	case AbilityStrength:
		s.Str = v
	case AbilityDexterity:
		s.Dex = v
	case AbilityConstitution:
		s.Con = v
	case AbilityIntelligence:
		s.Int = v
	case AbilityWisdom:
		s.Wis = v
	case AbilityCharisma:
		s.Cha = v
	}
}

// ProficiencyTier is 0 none, 1 proficient, 2 expertise
type ProficiencyTier int

// Proficiency tiers
const (
	ProficiencyNone       ProficiencyTier = 0
	ProficiencyProficient ProficiencyTier = 1
	ProficiencyExpertise  ProficiencyTier = 2
)

// Skill is a camelCase skill key such as "sleightOfHand"
type Skill string

// Skills
const (
	SkillAthletics      Skill = "athletics"
	SkillAcrobatics     Skill = "acrobatics"
	SkillSleightOfHand  Skill = "sleightOfHand"
	SkillStealth        Skill = "stealth"
	SkillArcana         Skill = "arcana"
	SkillHistory        Skill = "history"
	SkillInvestigation  Skill = "investigation"
	SkillNature         Skill = "nature"
	SkillReligion       Skill = "religion"
	SkillAnimalHandling Skill = "animalHandling"
	SkillInsight        Skill = "insight"
	SkillMedicine       Skill = "medicine"
	SkillPerception     Skill = "perception"
	SkillSurvival       Skill = "survival"
	SkillDeception      Skill = "deception"
	SkillIntimidation   Skill = "intimidation"
	SkillPerformance    Skill = "performance"
	SkillPersuasion     Skill = "persuasion"
)

// SkillAbilities maps each standard skill to its governing ability
var SkillAbilities = map[Skill]Ability{
	SkillAthletics:      AbilityStrength,
	SkillAcrobatics:     AbilityDexterity,
	SkillSleightOfHand:  AbilityDexterity,
	SkillStealth:        AbilityDexterity,
	SkillArcana:         AbilityIntelligence,
	SkillHistory:        AbilityIntelligence,
	SkillInvestigation:  AbilityIntelligence,
	SkillNature:         AbilityIntelligence,
	SkillReligion:       AbilityIntelligence,
	SkillAnimalHandling: AbilityWisdom,
	SkillInsight:        AbilityWisdom,
	SkillMedicine:       AbilityWisdom,
	SkillPerception:     AbilityWisdom,
	SkillSurvival:       AbilityWisdom,
	SkillDeception:      AbilityCharisma,
	SkillIntimidation:   AbilityCharisma,
	SkillPerformance:    AbilityCharisma,
	SkillPersuasion:     AbilityCharisma,
}

// ParseSkill accepts "sleightOfHand", "sleight of hand" or "Sleight Of Hand"
func ParseSkill(s string) (Skill, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for skill := range SkillAbilities {
		if strings.ToLower(string(skill)) == key {
			return skill, true
		}
	}
	return "", false
}

// DisplayName turns "sleightOfHand" into "Sleight Of Hand"
func (s Skill) DisplayName() string {
	var b strings.Builder
	for i, r := range string(s) {
		if i == 0 {
			b.WriteString(strings.ToUpper(string(r)))
			continue
		}
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CasterType selects a spell slot progression
type CasterType string

// Caster progressions
const (
	CasterNone  CasterType = ""
	CasterFull  CasterType = "full"
	CasterHalf  CasterType = "half"
	CasterThird CasterType = "third"
	CasterPact  CasterType = "pact"
)

// RestType says which rest recharges a resource
type RestType string

// Rest types
const (
	RestShort RestType = "short"
	RestLong  RestType = "long"
	RestNone  RestType = "none"
)

// Mood is the conversation state of a character
type Mood string

// Moods
const (
	MoodDefault    Mood = "default"
	MoodBattle     Mood = "battle"
	MoodAngry      Mood = "angry"
	MoodInjured    Mood = "injured"
	MoodTriumphant Mood = "triumphant"
)

var moodPrompts = map[Mood]string{
	MoodDefault:    "",
	MoodBattle:     "You are in combat. Be tactical and focused.",
	MoodAngry:      "You are angry and aggressive in your responses.",
	MoodInjured:    "You are wounded and in pain. Show weakness and desperation.",
	MoodTriumphant: "You just achieved a great victory. Be confident and celebratory.",
}

// AllMoods lists the accepted moods
var AllMoods = []Mood{MoodDefault, MoodBattle, MoodAngry, MoodInjured, MoodTriumphant}

// ParseMood maps an empty string to MoodDefault and rejects unknown moods
func ParseMood(s string) (Mood, bool) {
	if s == "" {
		return MoodDefault, true
	}
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	_, ok := moodPrompts[m]
	return m, ok
}

// Prompt returns the system prompt fragment for the mood
func (m Mood) Prompt() string {
	return moodPrompts[m]
}
