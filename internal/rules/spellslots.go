package rules

import (
	"strings"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
)

// fullCasterSlots[level-1][spellLevel-1] is the slot count for a full caster
var fullCasterSlots = [20][]int{
	{2},
	{3},
	{4, 2},
	{4, 3},
	{4, 3, 2},
	{4, 3, 3},
	{4, 3, 3, 1},
	{4, 3, 3, 2},
	{4, 3, 3, 3, 1},
	{4, 3, 3, 3, 2},
	{4, 3, 3, 3, 2, 1},
	{4, 3, 3, 3, 2, 1},
	{4, 3, 3, 3, 2, 1, 1},
	{4, 3, 3, 3, 2, 1, 1},
	{4, 3, 3, 3, 2, 1, 1, 1},
	{4, 3, 3, 3, 2, 1, 1, 1},
	{4, 3, 3, 3, 2, 1, 1, 1, 1},
	{4, 3, 3, 3, 3, 1, 1, 1, 1},
	{4, 3, 3, 3, 3, 2, 1, 1, 1},
	{4, 3, 3, 3, 3, 2, 2, 1, 1},
}

var classCasterTypes = map[string]entities.CasterType{
	"bard":      entities.CasterFull,
	"cleric":    entities.CasterFull,
	"druid":     entities.CasterFull,
	"sorcerer":  entities.CasterFull,
	"wizard":    entities.CasterFull,
	"artificer": entities.CasterHalf,
	"paladin":   entities.CasterHalf,
	"ranger":    entities.CasterHalf,
	"warlock":   entities.CasterPact,
}

// CasterTypeForClass infers the slot progression from a class name
func CasterTypeForClass(class string) entities.CasterType {
	return classCasterTypes[strings.ToLower(strings.TrimSpace(class))]
}

// IsWarlock matches class names containing "warlock"
func IsWarlock(class string) bool {
	return strings.Contains(strings.ToLower(class), "warlock")
}

// SpellSlotsFor returns full slot pools for a caster of the given level
func SpellSlotsFor(casterType entities.CasterType, level int) map[int]entities.SpellSlot {
	level = min(max(level, 1), 20)
	slots := make(map[int]entities.SpellSlot)

	var counts []int
	switch casterType {
	case entities.CasterFull:
		counts = fullCasterSlots[level-1]
	case entities.CasterHalf:
		if level >= 2 {
			counts = fullCasterSlots[ceilDiv(level, 2)-1]
		}
	case entities.CasterThird:
		if level >= 3 {
			counts = fullCasterSlots[ceilDiv(level, 3)-1]
		}
	case entities.CasterPact:
		count, slotLevel := pactMagic(level)
		slots[slotLevel] = entities.SpellSlot{Current: count, Max: count}
		return slots
	}

	for i, n := range counts {
		slots[i+1] = entities.SpellSlot{Current: n, Max: n}
	}
	return slots
}

func pactMagic(level int) (count, slotLevel int) {
	switch {
	case level >= 17:
		count = 4
	case level >= 11:
		count = 3
	case level >= 2:
		count = 2
	default:
		count = 1
	}
	slotLevel = min(5, ceilDiv(level, 2))
	return count, slotLevel
}

// HasSpellSlot reports an available slot at level. Cantrips always succeed.
func HasSpellSlot(sc *entities.Spellcasting, level int) bool {
	if level == 0 {
		return true
	}
	if sc == nil {
		return false
	}
	return sc.SpellSlots[level].Current > 0
}

// UseSpellSlot consumes one slot at level. Casting a cantrip is free.
func UseSpellSlot(sc *entities.Spellcasting, level int) error {
	if level == 0 {
		return nil
	}
	if level < 1 || level > 9 {
		return errors.InvalidArgumentf("spell slot level must be between 0 and 9, got %d", level)
	}
	if !HasSpellSlot(sc, level) {
		return errors.FailedPreconditionf("no level %d spell slots remaining", level)
	}
	slot := sc.SpellSlots[level]
	slot.Current--
	sc.SpellSlots[level] = slot
	return nil
}

// RestoreSpellSlots refills every slot pool and reports whether any changed
func RestoreSpellSlots(sc *entities.Spellcasting) bool {
	if sc == nil {
		return false
	}
	restored := false
	for level, slot := range sc.SpellSlots {
		if slot.Current != slot.Max {
			restored = true
		}
		slot.Current = slot.Max
		sc.SpellSlots[level] = slot
	}
	return restored
}
