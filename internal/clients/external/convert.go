package external

import (
	"strings"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	srd "github.com/fadedpez/dnd5e-api/entities"

	"github.com/dabidoe/character-foundry/internal/entities"
)

// Value of one coin in gold pieces
var coinValues = map[string]float64{
	"cp": 0.01,
	"sp": 0.1,
	"ep": 0.5,
	"gp": 1,
	"pp": 10,
}

var mediumArmorDexCap = 2

// costInGold converts an SRD cost into gold pieces
func costInGold(cost *srd.Cost) float64 {
	if cost == nil {
		return 0
	}
	rate, ok := coinValues[strings.ToLower(cost.Unit)]
	if !ok {
		rate = 1
	}
	return float64(cost.Quantity) * rate
}

func categoryKey(ref *srd.ReferenceItem) string {
	if ref == nil {
		return ""
	}
	return ref.Key
}

// baseItem fills the fields every SRD entry shares
func baseItem(key, name string, weight float64, cost *srd.Cost) *entities.Item {
	return &entities.Item{
		ID:       key,
		GUID:     GUIDPrefix + key,
		Name:     name,
		Rarity:   entities.RarityCommon,
		Quantity: 1,
		Weight:   weight,
		Value:    costInGold(cost),
		Source:   SourceSRD,
		Template: true,
		Public:   true,
	}
}

// convertEquipmentToItem converts a dnd5e-api equipment entry into a library
// template item. Unknown equipment kinds return nil.
func convertEquipmentToItem(equipment dnd5e.EquipmentInterface) *entities.Item {
	if equipment == nil {
		return nil
	}

	switch eq := equipment.(type) {
	case *srd.Weapon:
		if eq == nil {
			return nil
		}
		item := baseItem(eq.Key, eq.Name, float64(eq.Weight), eq.Cost)
		item.Category = entities.CategoryWeapon
		item.Slot = entities.SlotMainHand
		item.Description = strings.TrimSpace(eq.WeaponCategory + " " + strings.ToLower(eq.WeaponRange) + " weapon")

		weapon := &entities.WeaponProperties{
			Range: strings.ToLower(eq.WeaponRange),
		}
		if eq.Damage != nil {
			weapon.Damage = eq.Damage.DamageDice
			if eq.Damage.DamageType != nil {
				weapon.DamageType = strings.ToLower(eq.Damage.DamageType.Name)
			}
		}
		for _, prop := range eq.Properties {
			if prop == nil {
				continue
			}
			weapon.Properties = append(weapon.Properties, generateSlug(prop.Name))
		}
		item.Weapon = weapon
		return item

	case *srd.Armor:
		if eq == nil {
			return nil
		}
		item := baseItem(eq.Key, eq.Name, float64(eq.Weight), eq.Cost)
		base := 0
		dexBonus := false
		if eq.ArmorClass != nil {
			base = eq.ArmorClass.Base
			dexBonus = eq.ArmorClass.DexBonus
		}

		armorType := strings.ToLower(eq.ArmorCategory)
		if armorType == "shield" || categoryKey(eq.EquipmentCategory) == "shields" {
			item.Category = entities.CategoryShield
			item.Slot = entities.SlotOffHand
			item.Shield = &entities.ShieldProperties{ACBonus: base}
			return item
		}

		item.Category = entities.CategoryArmor
		item.Slot = entities.SlotBody
		armor := &entities.ArmorProperties{
			AC:                  base,
			Type:                armorType,
			StealthDisadvantage: eq.StealthDisadvantage,
			StrengthRequired:    eq.StrMinimum,
		}
		switch {
		case !dexBonus:
			noDex := 0
			armor.MaxDexBonus = &noDex
		case armorType == "medium":
			dexCap := mediumArmorDexCap
			armor.MaxDexBonus = &dexCap
		}
		item.Armor = armor
		return item

	case *srd.Equipment:
		if eq == nil {
			return nil
		}
		item := baseItem(eq.Key, eq.Name, float64(eq.Weight), eq.Cost)
		item.Category = entities.CategoryGear
		if strings.Contains(categoryKey(eq.EquipmentCategory), "tool") {
			item.Category = entities.CategoryTool
		}
		return item
	}

	return nil
}
