package rules

import (
	"github.com/dabidoe/character-foundry/internal/entities"
)

// ApplyDamage removes amount hit points, temporary first. Current never goes
// below zero.
func ApplyDamage(hp entities.HitPoints, amount int) entities.HitPoints {
	if amount <= 0 {
		return hp
	}
	absorbed := min(hp.Temporary, amount)
	hp.Temporary -= absorbed
	hp.Current = max(0, hp.Current-(amount-absorbed))
	return hp
}

// ApplyHealing restores hit points up to max. Healing never touches
// temporary hit points and never lowers current.
func ApplyHealing(hp entities.HitPoints, amount int) entities.HitPoints {
	if amount <= 0 || hp.Current >= hp.Max {
		return hp
	}
	hp.Current = min(hp.Max, hp.Current+amount)
	return hp
}

// GrantTemporaryHP keeps the larger of the current and granted pools
func GrantTemporaryHP(hp entities.HitPoints, amount int) entities.HitPoints {
	hp.Temporary = max(hp.Temporary, amount)
	return hp
}

// Unconscious reports a character at zero hit points
func Unconscious(hp entities.HitPoints) bool {
	return hp.Current <= 0
}
