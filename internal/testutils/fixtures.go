package testutils

import (
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/testutils/builders"
)

// Test item ids used by the fixtures
const (
	TestLongswordID  = "item-longsword"
	TestChainMailID  = "item-chain-mail"
	TestShieldID     = "item-shield"
	TestRingID       = "item-ring"
	TestGreataxeID   = "item-greataxe"
	TestSecondWindID = "second-wind"
	TestFireBoltID   = "fire-bolt"
	TestMissileID    = "magic-missile"
)

// CreateTestLongsword is a +0 longsword, not equipped
func CreateTestLongsword() entities.Item {
	return entities.Item{
		ID:       TestLongswordID,
		GUID:     "tpl-longsword",
		Name:     "Longsword",
		Category: entities.CategoryWeapon,
		Rarity:   entities.RarityCommon,
		Quantity: 1,
		Weight:   3,
		Slot:     entities.SlotMainHand,
		Weapon: &entities.WeaponProperties{
			Damage:          "1d8",
			DamageType:      "slashing",
			Properties:      []string{entities.PropertyVersatile},
			VersatileDamage: "1d10",
		},
	}
}

// CreateTestChainMail is AC 16 heavy armor with no dex bonus
func CreateTestChainMail() entities.Item {
	noDex := 0
	return entities.Item{
		ID:       TestChainMailID,
		Name:     "Chain Mail",
		Category: entities.CategoryArmor,
		Rarity:   entities.RarityCommon,
		Quantity: 1,
		Weight:   55,
		Slot:     entities.SlotBody,
		Armor: &entities.ArmorProperties{
			AC:               16,
			Type:             "heavy",
			MaxDexBonus:      &noDex,
			StrengthRequired: 13,
		},
	}
}

// CreateTestShield is a +2 shield
func CreateTestShield() entities.Item {
	return entities.Item{
		ID:       TestShieldID,
		Name:     "Shield",
		Category: entities.CategoryShield,
		Quantity: 1,
		Weight:   6,
		Slot:     entities.SlotOffHand,
		Shield:   &entities.ShieldProperties{ACBonus: 2},
	}
}

// CreateTestRing is a ring of protection
func CreateTestRing(id string) entities.Item {
	return entities.Item{
		ID:                 id,
		Name:               "Ring of Protection",
		Category:           entities.CategoryRing,
		Rarity:             entities.RarityRare,
		RequiresAttunement: true,
		Quantity:           1,
		Slot:               entities.SlotRing,
		CustomProperties: &entities.CustomProperties{
			Bonuses: entities.Bonuses{AC: 1},
		},
	}
}

// CreateTestGreataxe is a two-handed weapon
func CreateTestGreataxe() entities.Item {
	return entities.Item{
		ID:       TestGreataxeID,
		Name:     "Greataxe",
		Category: entities.CategoryWeapon,
		Quantity: 1,
		Weight:   7,
		Slot:     entities.SlotMainHand,
		Weapon: &entities.WeaponProperties{
			Damage:     "1d12",
			DamageType: "slashing",
			Properties: []string{"heavy", entities.PropertyTwoHanded},
		},
	}
}

// CreateTestCharacter returns a level 5 fighter carrying a longsword, chain
// mail and a shield, none of them equipped
func CreateTestCharacter(userID string) *entities.Character {
	return builders.NewCharacterBuilder().
		WithID("char_fighter").
		WithUserID(userID).
		WithName("Thorin").
		WithClass("Fighter", 5).
		WithStats(16, 14, 14, 10, 12, 8).
		WithHP(30, 44, 0).
		WithHitDice("d10", 5, 5).
		WithSkill(entities.SkillAthletics, entities.ProficiencyProficient).
		WithSkill(entities.SkillPerception, entities.ProficiencyNone).
		WithSaveProficiency(entities.AbilityStrength, entities.AbilityConstitution).
		WithAbility(entities.ClassAbility{
			ID:            TestSecondWindID,
			Name:          "Second Wind",
			Description:   "Regain 1d10 + level hit points.",
			Damage:        "1d10+5",
			DamageType:    "healing",
			UsesPerRest:   1,
			UsesRemaining: 1,
			RestType:      entities.RestShort,
		}).
		WithItem(CreateTestLongsword()).
		WithItem(CreateTestChainMail()).
		WithItem(CreateTestShield()).
		Build()
}

// CreateTestWizard returns a level 3 wizard with fire bolt and magic missile
func CreateTestWizard(userID string) *entities.Character {
	return builders.NewCharacterBuilder().
		WithID("char_wizard").
		WithUserID(userID).
		WithName("Elara").
		WithClass("Wizard", 3).
		WithStats(8, 14, 12, 17, 12, 10).
		WithHP(17, 17, 0).
		WithHitDice("d6", 3, 3).
		WithSaveProficiency(entities.AbilityIntelligence, entities.AbilityWisdom).
		WithSpellcasting(&entities.Spellcasting{
			Enabled:    true,
			Ability:    entities.AbilityIntelligence,
			CasterType: entities.CasterFull,
			SpellSlots: map[int]entities.SpellSlot{
				1: {Current: 4, Max: 4},
				2: {Current: 2, Max: 2},
			},
			Spells: []entities.Spell{
				{ID: TestFireBoltID, Name: "Fire Bolt", Level: 0, Damage: "1d10", DamageType: "fire", AttackRoll: true},
				{ID: TestMissileID, Name: "Magic Missile", Level: 1, Damage: "3d4+3", DamageType: "force"},
				{ID: "hold-person", Name: "Hold Person", Level: 2, SavingThrow: "wis", Concentration: true},
			},
		}).
		WithPersonality("A sage from Candlekeep.", "Curious and precise.").
		Build()
}
