package rules

import (
	"fmt"

	"github.com/dabidoe/character-foundry/internal/dice"
	"github.com/dabidoe/character-foundry/internal/entities"
)

// EquipmentLayout maps equipped inventory to slots. An item that names its
// equipped slot keeps it; rings without one fill ring1 then ring2. A slot
// already taken keeps its first item.
func EquipmentLayout(inventory []entities.Item) map[entities.Slot]*entities.Item {
	layout := make(map[entities.Slot]*entities.Item)
	for i := range inventory {
		item := &inventory[i]
		if !item.Equipped {
			continue
		}

		slot := item.EquippedSlot
		if slot == "" {
			slot = item.Slot
		}
		if slot == entities.SlotRing {
			switch {
			case layout[entities.SlotRing1] == nil:
				slot = entities.SlotRing1
			case layout[entities.SlotRing2] == nil:
				slot = entities.SlotRing2
			default:
				continue
			}
		}
		if slot == "" || layout[slot] != nil {
			continue
		}
		layout[slot] = item
	}
	return layout
}

// ArmorClass computes AC from equipped body armor, shield and the AC bonuses
// of rings and amulets.
func ArmorClass(c *entities.Character) int {
	layout := EquipmentLayout(c.Inventory)
	dexMod := Modifier(c, entities.AbilityDexterity)

	ac := 10
	if body := layout[entities.SlotBody]; body != nil && body.Armor != nil {
		ac = body.Armor.AC + body.MagicBonus()
		if body.Armor.MaxDexBonus != nil {
			dexMod = min(dexMod, *body.Armor.MaxDexBonus)
		}
	}
	ac += dexMod

	if shield := layout[entities.SlotOffHand]; shield != nil && shield.Shield != nil {
		ac += shield.Shield.ACBonus + shield.MagicBonus()
	}

	for _, slot := range []entities.Slot{entities.SlotRing1, entities.SlotRing2, entities.SlotNeck} {
		if item := layout[slot]; item != nil {
			ac += item.ACBonus()
		}
	}
	return ac
}

// weaponAbilityMod is STR, or the better of STR and DEX for finesse weapons
func weaponAbilityMod(c *entities.Character, weapon *entities.Item) int {
	str := Modifier(c, entities.AbilityStrength)
	if weapon.HasProperty(entities.PropertyFinesse) {
		return max(str, Modifier(c, entities.AbilityDexterity))
	}
	return str
}

func weaponMagic(weapon *entities.Item) int {
	if weapon.Weapon != nil && weapon.Weapon.AttackBonus != 0 {
		return weapon.Weapon.AttackBonus
	}
	return weapon.MagicBonus()
}

// WeaponAttackBonus is proficiency + ability mod + magic
func WeaponAttackBonus(c *entities.Character, weapon *entities.Item) int {
	return ProficiencyBonus(c) + weaponAbilityMod(c, weapon) + weaponMagic(weapon)
}

// Damage is a dice formula with its damage type
type Damage struct {
	Formula string `json:"formula"`
	Type    string `json:"type,omitempty"`
}

// WeaponDamage returns "<dice>+<mod+magic>". With versatile set the weapon's
// versatile dice are used when it has them. A modifier already written on
// the weapon is folded into the bonus.
func WeaponDamage(c *entities.Character, weapon *entities.Item, versatile bool) Damage {
	if weapon.Weapon == nil {
		return Damage{}
	}
	base := weapon.Weapon.Damage
	if versatile && weapon.Weapon.VersatileDamage != "" {
		base = weapon.Weapon.VersatileDamage
	}
	bonus := weaponAbilityMod(c, weapon) + weapon.MagicBonus()

	if expr, err := dice.Parse(base); err == nil && !expr.Flat() {
		expr.Modifier += bonus
		return Damage{Formula: expr.String(), Type: weapon.Weapon.DamageType}
	}

	formula := base
	switch {
	case bonus > 0:
		formula = fmt.Sprintf("%s+%d", base, bonus)
	case bonus < 0:
		formula = fmt.Sprintf("%s%d", base, bonus)
	}
	return Damage{Formula: formula, Type: weapon.Weapon.DamageType}
}

// CarriedWeight sums weight times quantity; a zero quantity counts as one
func CarriedWeight(inventory []entities.Item) float64 {
	var total float64
	for _, item := range inventory {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += item.Weight * float64(qty)
	}
	return total
}

// EncumbranceLevel labels a carrying band
type EncumbranceLevel string

// Encumbrance levels
const (
	EncumbranceNormal  EncumbranceLevel = "normal"
	EncumbranceLight   EncumbranceLevel = "encumbered"
	EncumbranceHeavy   EncumbranceLevel = "heavily-encumbered"
	EncumbranceOverMax EncumbranceLevel = "over-max"
)

// EncumbranceStatus is the band and its penalties
type EncumbranceStatus struct {
	Level         EncumbranceLevel `json:"level"`
	SpeedPenalty  int              `json:"speedPenalty"`
	Disadvantage  bool             `json:"disadvantage"`
	Capacity      int              `json:"capacity"`
	CarriedWeight float64          `json:"carriedWeight"`
}

// Encumbrance applies the variant encumbrance bands at 5, 10 and 15 times
// the strength score.
func Encumbrance(strength int, weight float64) EncumbranceStatus {
	status := EncumbranceStatus{
		Level:         EncumbranceNormal,
		Capacity:      strength * 15,
		CarriedWeight: weight,
	}
	str := float64(strength)
	switch {
	case weight <= str*5:
	case weight <= str*10:
		status.Level = EncumbranceLight
		status.SpeedPenalty = 10
	case weight <= str*15:
		status.Level = EncumbranceHeavy
		status.SpeedPenalty = 20
		status.Disadvantage = true
	default:
		status.Level = EncumbranceOverMax
		status.SpeedPenalty = 20
		status.Disadvantage = true
	}
	return status
}
