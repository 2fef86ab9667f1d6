package character

import (
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/rules"
	characterrepo "github.com/dabidoe/character-foundry/internal/repositories/character"
)

// ListCharactersInput pages the character collection
type ListCharactersInput struct {
	UserID string
	Limit  int
	Skip   int
}

// ListCharactersOutput is one page of characters
type ListCharactersOutput struct {
	Characters []*entities.Character `json:"characters"`
	Total      int                   `json:"total"`
	Limit      int                   `json:"limit"`
	Skip       int                   `json:"skip"`
}

// GetCharacterInput identifies a character
type GetCharacterInput struct {
	CharacterID string
}

// GetCharacterOutput is the stored document and its derived values
type GetCharacterOutput struct {
	Character *entities.Character
	Computed  *rules.Computed
}

// SearchCharactersInput is a free-text query over name, race and class
type SearchCharactersInput struct {
	Query string
	Limit int
}

// SearchCharactersOutput holds the matches
type SearchCharactersOutput struct {
	Characters []*entities.Character `json:"characters"`
}

// GetStatsInput is empty
type GetStatsInput struct{}

// GetStatsOutput holds collection counts
type GetStatsOutput struct {
	Stats *characterrepo.StatsOutput
}

// CreateCharacterInput is a manually built character. Missing fields are
// filled with rules defaults.
type CreateCharacterInput struct {
	Character *entities.Character
}

// CreateCharacterOutput is the stored character
type CreateCharacterOutput struct {
	Character *entities.Character
	Computed  *rules.Computed
}

// UpdateStatsInput merges ability scores keyed by "str" or "Strength"
type UpdateStatsInput struct {
	CharacterID string
	Stats       map[string]int
}

// UpdateStatsOutput is the updated character
type UpdateStatsOutput struct {
	Character *entities.Character
	Computed  *rules.Computed
}

// DeleteCharacterInput identifies a character
type DeleteCharacterInput struct {
	CharacterID string
}

// DeleteCharacterOutput confirms the delete
type DeleteCharacterOutput struct {
	Deleted bool `json:"deleted"`
}

// RollSkillInput is a skill check
type RollSkillInput struct {
	CharacterID  string
	Skill        string
	Advantage    bool
	Disadvantage bool
}

// RollSkillOutput is a resolved skill check
type RollSkillOutput struct {
	Skill             string `json:"skill"`
	Roll              int    `json:"roll"`
	Rolls             []int  `json:"rolls"`
	Modifier          int    `json:"modifier"`
	Total             int    `json:"total"`
	Breakdown         string `json:"breakdown"`
	Narrative         string `json:"narrative"`
	IsCriticalSuccess bool   `json:"isCriticalSuccess"`
	IsCriticalFailure bool   `json:"isCriticalFailure"`
}

// RollSaveInput is a saving throw
type RollSaveInput struct {
	CharacterID  string
	Ability      string
	Advantage    bool
	Disadvantage bool
}

// RollSaveOutput is a resolved saving throw
type RollSaveOutput struct {
	Ability           string `json:"ability"`
	Roll              int    `json:"roll"`
	Rolls             []int  `json:"rolls"`
	Modifier          int    `json:"modifier"`
	Total             int    `json:"total"`
	Breakdown         string `json:"breakdown"`
	Narrative         string `json:"narrative"`
	IsCriticalSuccess bool   `json:"isCriticalSuccess"`
	IsCriticalFailure bool   `json:"isCriticalFailure"`
}

// AttackInput is either an inventory weapon or a raw bonus and formula
type AttackInput struct {
	CharacterID   string
	WeaponID      string
	WeaponName    string
	AttackType    string
	AttackBonus   *int
	DamageFormula string
	Versatile     bool
	Advantage     bool
	Disadvantage  bool
}

// AttackRoll is the to-hit half of an attack
type AttackRoll struct {
	Roll           int    `json:"roll"`
	Rolls          []int  `json:"rolls,omitempty"`
	Bonus          int    `json:"bonus"`
	Total          int    `json:"total"`
	Breakdown      string `json:"breakdown"`
	IsCriticalHit  bool   `json:"isCriticalHit"`
	IsCriticalMiss bool   `json:"isCriticalMiss"`
}

// AttackDamage is the damage half. Critical is set only on a natural 20.
type AttackDamage struct {
	Normal   int    `json:"normal"`
	Critical *int   `json:"critical"`
	Formula  string `json:"formula"`
	Type     string `json:"type,omitempty"`
}

// AttackOutput is a resolved attack
type AttackOutput struct {
	Weapon     string       `json:"weapon"`
	AttackType string       `json:"attackType"`
	Attack     AttackRoll   `json:"attack"`
	Damage     AttackDamage `json:"damage"`
	Narrative  string       `json:"narrative"`
}

// ApplyDamageInput removes hit points
type ApplyDamageInput struct {
	CharacterID string
	Amount      int
	DamageType  string
}

// ApplyDamageOutput reports the new hit points
type ApplyDamageOutput struct {
	HP          entities.HitPoints `json:"hp"`
	DamageTaken int                `json:"damageTaken"`
	DamageType  string             `json:"damageType"`
	Unconscious bool               `json:"unconscious"`
}

// HealInput restores hit points
type HealInput struct {
	CharacterID string
	Amount      int
	// Temporary grants temporary hit points; they do not stack with an
	// existing pool, the larger one is kept
	Temporary int
}

// HealOutput reports the new hit points
type HealOutput struct {
	HP              entities.HitPoints `json:"hp"`
	HealingReceived int                `json:"healingReceived"`
}

// UseAbilityInput names a class ability
type UseAbilityInput struct {
	CharacterID string
	AbilityID   string
}

// RolledDamage is a rolled damage formula
type RolledDamage struct {
	Total     int    `json:"total"`
	Formula   string `json:"formula"`
	Type      string `json:"type,omitempty"`
	Breakdown string `json:"breakdown"`
}

// AbilityResult holds whatever the ability rolled
type AbilityResult struct {
	Damage *RolledDamage `json:"damage,omitempty"`
	Attack *AttackRoll   `json:"attack,omitempty"`
}

// UseAbilityOutput is a used ability. UsesRemaining is nil for unlimited
// abilities.
type UseAbilityOutput struct {
	Ability       string        `json:"ability"`
	Result        AbilityResult `json:"result"`
	UsesRemaining *int          `json:"usesRemaining,omitempty"`
	Narrative     string        `json:"narrative"`
}

// CastSpellInput casts a known spell. SlotLevel defaults to the spell's
// level and may be higher.
type CastSpellInput struct {
	CharacterID string
	SpellID     string
	SlotLevel   *int
}

// CastSpellOutput is a cast spell
type CastSpellOutput struct {
	Spell          string        `json:"spell"`
	SlotLevel      int           `json:"slotLevel"`
	SlotsRemaining int           `json:"slotsRemaining"`
	Damage         *RolledDamage `json:"damage,omitempty"`
	Attack         *AttackRoll   `json:"attack,omitempty"`
	SaveDC         *int          `json:"saveDC,omitempty"`
	SaveAbility    string        `json:"saveAbility,omitempty"`
	Concentration  bool          `json:"concentration,omitempty"`
	Narrative      string        `json:"narrative"`
}

// ShortRestInput spends hit dice
type ShortRestInput struct {
	CharacterID  string
	HitDiceToUse int
}

// ShortRestOutput is the rest result plus the new pools
type ShortRestOutput struct {
	*rules.ShortRestResult
	HP        entities.HitPoints `json:"hp"`
	HitDice   entities.HitDice   `json:"hitDice"`
	Narrative string             `json:"narrative"`
}

// LongRestInput identifies the resting character
type LongRestInput struct {
	CharacterID string
}

// LongRestOutput is the rest result plus the new hit points
type LongRestOutput struct {
	*rules.LongRestResult
	HP         entities.HitPoints `json:"hp"`
	Exhaustion int                `json:"exhaustion"`
	Narrative  string             `json:"narrative"`
}

// AddItemInput adds a library item by GUID or a custom item
type AddItemInput struct {
	CharacterID string
	GUID        string
	Item        *entities.Item
	Quantity    int
}

// AddItemOutput is the new inventory entry
type AddItemOutput struct {
	Item      *entities.Item  `json:"item"`
	Inventory []entities.Item `json:"inventory"`
}

// EquipItemInput equips an inventory item. Slot defaults to the item's slot;
// rings pick the first free ring slot.
type EquipItemInput struct {
	CharacterID string
	ItemID      string
	Slot        string
}

// EquipItemOutput reports the equipped item and anything it displaced
type EquipItemOutput struct {
	Item       *entities.Item   `json:"item"`
	Slot       entities.Slot    `json:"slot"`
	Unequipped []*entities.Item `json:"unequipped,omitempty"`
	AC         int              `json:"ac"`
}

// UnequipItemInput unequips an inventory item
type UnequipItemInput struct {
	CharacterID string
	ItemID      string
}

// UnequipItemOutput reports the item and the new armor class
type UnequipItemOutput struct {
	Item *entities.Item `json:"item"`
	AC   int            `json:"ac"`
}

// RemoveItemInput drops Quantity of an item; zero drops the whole stack
type RemoveItemInput struct {
	CharacterID string
	ItemID      string
	Quantity    int
}

// RemoveItemOutput reports what left the inventory
type RemoveItemOutput struct {
	ItemID    string `json:"itemId"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
	AC        int    `json:"ac"`
}
