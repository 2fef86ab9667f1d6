// Package entities holds the character and item documents persisted by the
// service. Optional fields are plain zero values: a missing block in stored
// JSON decodes to an empty value and the rules engine treats it as zero.
package entities

import "time"

// Character is the persisted D&D 5e character document
type Character struct {
	ID          string `json:"id"`
	UserID      string `json:"userId,omitempty"`
	Name        string `json:"name"`
	Race        string `json:"race"`
	Class       string `json:"class"`
	Subclass    string `json:"subclass,omitempty"`
	Level       int    `json:"level"`
	Background  string `json:"background,omitempty"`
	Alignment   string `json:"alignment,omitempty"`
	Experience  int    `json:"experience,omitempty"`
	Personality string `json:"personality,omitempty"`
	ImagePrompt string `json:"imagePrompt,omitempty"`

	Stats AbilityScores `json:"stats"`
	HP    HitPoints     `json:"hp"`

	AC               int `json:"ac"`
	Initiative       int `json:"initiative"`
	Speed            int `json:"speed"`
	ProficiencyBonus int `json:"proficiencyBonus,omitempty"`

	Skills       map[Skill]SkillProficiency         `json:"skills"`
	SavingThrows map[Ability]SavingThrowProficiency `json:"savingThrows"`
	Spellcasting *Spellcasting                      `json:"spellcasting,omitempty"`
	Abilities    []ClassAbility                     `json:"abilities"`
	Resources    Resources                          `json:"resources"`

	Conditions    []string       `json:"conditions,omitempty"`
	Exhaustion    int            `json:"exhaustion"`
	Inspiration   bool           `json:"inspiration,omitempty"`
	TempModifiers []TempModifier `json:"tempModifiers"`

	Inventory []Item   `json:"inventory"`
	Currency  Currency `json:"currency"`

	CurrentState        Mood                  `json:"currentState,omitempty"`
	ConversationHistory []ConversationMessage `json:"conversationHistory,omitempty"`

	Images Images `json:"images"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HitPoints tracks current, maximum and temporary hit points
type HitPoints struct {
	Current   int `json:"current"`
	Max       int `json:"max"`
	Temporary int `json:"temporary"`
}

// SkillProficiency names the governing ability and the proficiency tier
type SkillProficiency struct {
	Ability     Ability         `json:"ability"`
	Proficiency ProficiencyTier `json:"proficiency"`
}

// SavingThrowProficiency marks a proficient save
type SavingThrowProficiency struct {
	Proficient bool `json:"proficient"`
}

// Spellcasting is the spell block of a caster
type Spellcasting struct {
	Enabled        bool              `json:"enabled"`
	Ability        Ability           `json:"ability"`
	CasterType     CasterType        `json:"casterType,omitempty"`
	SpellSlots     map[int]SpellSlot `json:"spellSlots"`
	Spells         []Spell           `json:"spells,omitempty"`
	CantripsKnown  int               `json:"cantripsKnown,omitempty"`
	SpellsKnown    int               `json:"spellsKnown,omitempty"`
	SpellsPrepared int               `json:"spellsPrepared,omitempty"`
}

// SpellSlot is the pool for one spell level
type SpellSlot struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Spell is a known or prepared spell. Level 0 is a cantrip.
type Spell struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Level         int    `json:"level"`
	School        string `json:"school,omitempty"`
	CastingTime   string `json:"castingTime,omitempty"`
	Range         string `json:"range,omitempty"`
	Components    string `json:"components,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Concentration bool   `json:"concentration,omitempty"`
	Ritual        bool   `json:"ritual,omitempty"`
	Description   string `json:"description,omitempty"`
	Damage        string `json:"damage,omitempty"`
	DamageType    string `json:"damageType,omitempty"`
	AttackRoll    bool   `json:"attackRoll,omitempty"`
	SavingThrow   string `json:"savingThrow,omitempty"`
	Prepared      bool   `json:"prepared,omitempty"`
}

// UnlimitedUses marks an ability with no per-rest limit
const UnlimitedUses = -1

// ClassAbility is a class feature such as Second Wind or Rage
type ClassAbility struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Icon          string   `json:"icon,omitempty"`
	Description   string   `json:"description,omitempty"`
	Damage        string   `json:"damage,omitempty"`
	DamageType    string   `json:"damageType,omitempty"`
	Attack        bool     `json:"attack,omitempty"`
	AttackBonus   int      `json:"attackBonus,omitempty"`
	Type          string   `json:"type,omitempty"`
	Range         string   `json:"range,omitempty"`
	UsesPerRest   int      `json:"usesPerRest"`
	UsesRemaining int      `json:"usesRemaining"`
	RestType      RestType `json:"restType,omitempty"`
	Level         int      `json:"level,omitempty"`
}

// Limited reports whether the ability consumes uses
func (a ClassAbility) Limited() bool {
	return a.UsesPerRest > 0
}

// Resources holds hit dice and class resources (ki, rage, ...)
type Resources struct {
	HitDice HitDice          `json:"hitDice"`
	Custom  []CustomResource `json:"custom,omitempty"`
}

// HitDice is the pool of hit dice, Type like "d8"
type HitDice struct {
	Type    string `json:"type"`
	Current int    `json:"current"`
	Max     int    `json:"max"`
}

// CustomResource is a named class resource
type CustomResource struct {
	Name     string   `json:"name"`
	Current  int      `json:"current"`
	Max      int      `json:"max"`
	RestType RestType `json:"restType"`
}

// TempModifier is a temporary effect such as Bless
type TempModifier struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	AppliesTo string `json:"appliesTo"`
	Duration  string `json:"duration,omitempty"`
}

// Currency in the four standard denominations
type Currency struct {
	CP int `json:"cp"`
	SP int `json:"sp"`
	GP int `json:"gp"`
	PP int `json:"pp"`
}

// ConversationMessage is one turn of chat history
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Images are CDN URLs (or an emoji) for the character
type Images struct {
	Portrait  string `json:"portrait,omitempty"`
	Battle    string `json:"battle,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Emoji     string `json:"emoji,omitempty"`
}

// FindAbility returns the index of the ability with id, or -1
func (c *Character) FindAbility(id string) int {
	for i := range c.Abilities {
		if c.Abilities[i].ID == id {
			return i
		}
	}
	return -1
}

// FindItem returns the index of the inventory item with id, or -1
func (c *Character) FindItem(id string) int {
	for i := range c.Inventory {
		if c.Inventory[i].ID == id {
			return i
		}
	}
	return -1
}

// FindSpell returns the known spell with id or name
func (c *Character) FindSpell(idOrName string) (Spell, bool) {
	if c.Spellcasting == nil {
		return Spell{}, false
	}
	for _, sp := range c.Spellcasting.Spells {
		if sp.ID == idOrName || sp.Name == idOrName {
			return sp, true
		}
	}
	return Spell{}, false
}
