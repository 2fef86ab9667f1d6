package entities

import (
	"strings"
	"time"
)

// ItemCategory groups items by kind
type ItemCategory string

// Item categories
const (
	CategoryWeapon   ItemCategory = "weapon"
	CategoryArmor    ItemCategory = "armor"
	CategoryShield   ItemCategory = "shield"
	CategoryPotion   ItemCategory = "potion"
	CategoryScroll   ItemCategory = "scroll"
	CategoryWand     ItemCategory = "wand"
	CategoryRing     ItemCategory = "ring"
	CategoryAmulet   ItemCategory = "amulet"
	CategoryGear     ItemCategory = "gear"
	CategoryTool     ItemCategory = "tool"
	CategoryTreasure ItemCategory = "treasure"
	CategoryQuest    ItemCategory = "quest"
)

// Rarity tier of an item
type Rarity string

// Rarities
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityVeryRare  Rarity = "very-rare"
	RarityLegendary Rarity = "legendary"
	RarityArtifact  Rarity = "artifact"
)

// Slot is an equipment slot. Items declare SlotRing; equipped rings occupy
// SlotRing1 or SlotRing2.
type Slot string

// Equipment slots
const (
	SlotHead     Slot = "head"
	SlotNeck     Slot = "neck"
	SlotBody     Slot = "body"
	SlotHands    Slot = "hands"
	SlotFeet     Slot = "feet"
	SlotRing     Slot = "ring"
	SlotRing1    Slot = "ring1"
	SlotRing2    Slot = "ring2"
	SlotMainHand Slot = "mainHand"
	SlotOffHand  Slot = "offHand"
	SlotBack     Slot = "back"
)

// Weapon properties referenced by the rules
const (
	PropertyFinesse   = "finesse"
	PropertyVersatile = "versatile"
	PropertyTwoHanded = "two-handed"
)

// Item is a catalog template or a character-owned instance
type Item struct {
	ID                 string       `json:"id" yaml:"id"`
	GUID               string       `json:"guid,omitempty" yaml:"guid"`
	Name               string       `json:"name" yaml:"name"`
	Category           ItemCategory `json:"category" yaml:"category"`
	Rarity             Rarity       `json:"rarity,omitempty" yaml:"rarity"`
	RequiresAttunement bool         `json:"requiresAttunement,omitempty" yaml:"requiresAttunement"`
	Attuned            bool         `json:"attuned,omitempty" yaml:"attuned"`
	Description        string       `json:"description,omitempty" yaml:"description"`
	Quantity           int          `json:"quantity" yaml:"quantity"`
	Weight             float64      `json:"weight" yaml:"weight"`
	Value              float64      `json:"value" yaml:"value"`

	Slot         Slot `json:"slot,omitempty" yaml:"slot"`
	Equipped     bool `json:"equipped" yaml:"equipped"`
	EquippedSlot Slot `json:"equippedSlot,omitempty" yaml:"-"`

	Weapon           *WeaponProperties     `json:"weapon,omitempty" yaml:"weapon"`
	Armor            *ArmorProperties      `json:"armor,omitempty" yaml:"armor"`
	Shield           *ShieldProperties     `json:"shield,omitempty" yaml:"shield"`
	Magic            *MagicProperties      `json:"magic,omitempty" yaml:"magic"`
	Consumable       *ConsumableProperties `json:"consumable,omitempty" yaml:"consumable"`
	CustomProperties *CustomProperties     `json:"customProperties,omitempty" yaml:"customProperties"`

	Image     string    `json:"image,omitempty" yaml:"image"`
	Source    string    `json:"source,omitempty" yaml:"source"`
	Template  bool      `json:"template,omitempty" yaml:"template"`
	Public    bool      `json:"public,omitempty" yaml:"public"`
	UserID    string    `json:"userId,omitempty" yaml:"-"`
	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"-"`
}

// WeaponProperties is the weapon block of an item
type WeaponProperties struct {
	Damage          string   `json:"damage" yaml:"damage"`
	DamageType      string   `json:"damageType,omitempty" yaml:"damageType"`
	Properties      []string `json:"properties,omitempty" yaml:"properties"`
	Range           string   `json:"range,omitempty" yaml:"range"`
	AttackBonus     int      `json:"attackBonus,omitempty" yaml:"attackBonus"`
	VersatileDamage string   `json:"versatileDamage,omitempty" yaml:"versatileDamage"`
}

// ArmorProperties is the armor block. MaxDexBonus nil means no cap.
type ArmorProperties struct {
	AC                  int    `json:"ac" yaml:"ac"`
	Type                string `json:"type,omitempty" yaml:"type"`
	MaxDexBonus         *int   `json:"maxDexBonus" yaml:"maxDexBonus"`
	StealthDisadvantage bool   `json:"stealthDisadvantage,omitempty" yaml:"stealthDisadvantage"`
	StrengthRequired    int    `json:"strengthRequired,omitempty" yaml:"strengthRequired"`
}

// ShieldProperties is the shield block
type ShieldProperties struct {
	ACBonus int `json:"acBonus" yaml:"acBonus"`
}

// MagicProperties holds the magic bonus and effects
type MagicProperties struct {
	Bonus   int           `json:"bonus,omitempty" yaml:"bonus"`
	Effects []MagicEffect `json:"effects,omitempty" yaml:"effects"`
}

// MagicEffect describes one magical effect
type MagicEffect struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Type        string   `json:"type,omitempty" yaml:"type"`
	Charges     *Charges `json:"charges,omitempty" yaml:"charges"`
}

// Charges of a charged effect
type Charges struct {
	Current      int    `json:"current" yaml:"current"`
	Max          int    `json:"max" yaml:"max"`
	RechargeType string `json:"rechargeType,omitempty" yaml:"rechargeType"`
}

// ConsumableProperties for potions and scrolls
type ConsumableProperties struct {
	Uses     int    `json:"uses" yaml:"uses"`
	Effect   string `json:"effect,omitempty" yaml:"effect"`
	Duration string `json:"duration,omitempty" yaml:"duration"`
}

// CustomProperties for unique items
type CustomProperties struct {
	Bonuses         Bonuses  `json:"bonuses" yaml:"bonuses"`
	Resistances     []string `json:"resistances,omitempty" yaml:"resistances"`
	Immunities      []string `json:"immunities,omitempty" yaml:"immunities"`
	Vulnerabilities []string `json:"vulnerabilities,omitempty" yaml:"vulnerabilities"`
	Senses          []string `json:"senses,omitempty" yaml:"senses"`
	Languages       []string `json:"languages,omitempty" yaml:"languages"`
}

// Bonuses granted by an item
type Bonuses struct {
	Str        int `json:"str,omitempty" yaml:"str"`
	Dex        int `json:"dex,omitempty" yaml:"dex"`
	Con        int `json:"con,omitempty" yaml:"con"`
	Int        int `json:"int,omitempty" yaml:"int"`
	Wis        int `json:"wis,omitempty" yaml:"wis"`
	Cha        int `json:"cha,omitempty" yaml:"cha"`
	AC         int `json:"ac,omitempty" yaml:"ac"`
	Initiative int `json:"initiative,omitempty" yaml:"initiative"`
	Speed      int `json:"speed,omitempty" yaml:"speed"`
}

// HasProperty reports a weapon property, case-insensitively
func (i *Item) HasProperty(p string) bool {
	if i.Weapon == nil {
		return false
	}
	for _, prop := range i.Weapon.Properties {
		if strings.EqualFold(prop, p) {
			return true
		}
	}
	return false
}

// MagicBonus returns the magic bonus or 0
func (i *Item) MagicBonus() int {
	if i.Magic == nil {
		return 0
	}
	return i.Magic.Bonus
}

// ACBonus returns customProperties.bonuses.ac or 0
func (i *Item) ACBonus() int {
	if i.CustomProperties == nil {
		return 0
	}
	return i.CustomProperties.Bonuses.AC
}

// CanEquipIn reports whether the item fits slot. Rings fit either ring slot;
// everything else only its declared slot.
func (i *Item) CanEquipIn(slot Slot) bool {
	if i.Slot == "" {
		return false
	}
	if slot == SlotRing1 || slot == SlotRing2 {
		return i.Slot == SlotRing
	}
	return i.Slot == slot
}

// Instance copies a template into a character-owned item
func (i Item) Instance(id string, quantity int) Item {
	out := i
	out.ID = id
	out.Template = false
	out.Public = false
	out.Equipped = false
	out.EquippedSlot = ""
	if quantity > 0 {
		out.Quantity = quantity
	}
	if out.Quantity == 0 {
		out.Quantity = 1
	}
	if i.Weapon != nil {
		w := *i.Weapon
		w.Properties = append([]string(nil), i.Weapon.Properties...)
		out.Weapon = &w
	}
	if i.Armor != nil {
		a := *i.Armor
		if i.Armor.MaxDexBonus != nil {
			v := *i.Armor.MaxDexBonus
			a.MaxDexBonus = &v
		}
		out.Armor = &a
	}
	if i.Shield != nil {
		sh := *i.Shield
		out.Shield = &sh
	}
	if i.Magic != nil {
		m := *i.Magic
		m.Effects = append([]MagicEffect(nil), i.Magic.Effects...)
		out.Magic = &m
	}
	if i.Consumable != nil {
		c := *i.Consumable
		out.Consumable = &c
	}
	if i.CustomProperties != nil {
		cp := *i.CustomProperties
		out.CustomProperties = &cp
	}
	return out
}

var rarityColors = map[Rarity]string{
	RarityCommon:    "#9e9e9e",
	RarityUncommon:  "#4caf50",
	RarityRare:      "#2196f3",
	RarityVeryRare:  "#9c27b0",
	RarityLegendary: "#ff9800",
	RarityArtifact:  "#d4af37",
}

// Color returns the display color for a rarity, common for unknown values
func (r Rarity) Color() string {
	if c, ok := rarityColors[r]; ok {
		return c
	}
	return rarityColors[RarityCommon]
}
