package rules

import (
	"strconv"
	"strings"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
)

const defaultHitDie = 8

// DieRoller rolls one die of the given size. The rpg-toolkit dice.Roller
// satisfies it.
type DieRoller interface {
	Roll(size int) (int, error)
}

// HitDieSize parses "d10" into 10, defaulting to d8
func HitDieSize(hitDie string) int {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hitDie)), "d")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return defaultHitDie
	}
	return n
}

// HitDieRoll is one spent hit die
type HitDieRoll struct {
	Roll       int `json:"roll"`
	HealAmount int `json:"healAmount"`
}

// ShortRestResult reports what a short rest changed
type ShortRestResult struct {
	HitDiceUsed       int          `json:"hitDiceUsed"`
	Rolls             []HitDieRoll `json:"rolls"`
	Healing           int          `json:"healing"`
	HitDiceRestored   int          `json:"hitDiceRestored"`
	ResourcesRestored []string     `json:"resourcesRestored,omitempty"`
	AbilitiesRestored int          `json:"abilitiesRestored"`
	PactMagicRestored bool         `json:"pactMagicRestored"`
}

// ShortRest spends hitDiceToUse hit dice, each healing max(1, roll + CON
// mod), then recovers half the maximum hit dice (rounded up), short rest
// resources and abilities, and all spell slots for warlocks. c is modified in
// place.
func ShortRest(c *entities.Character, hitDiceToUse int, roller DieRoller) (*ShortRestResult, error) {
	if hitDiceToUse < 0 {
		return nil, errors.InvalidArgument("hitDiceToUse cannot be negative")
	}
	if hitDiceToUse > c.Resources.HitDice.Current {
		return nil, errors.InvalidArgument("Not enough hit dice available")
	}

	result := &ShortRestResult{HitDiceUsed: hitDiceToUse}

	if hitDiceToUse > 0 {
		size := HitDieSize(c.Resources.HitDice.Type)
		conMod := Modifier(c, entities.AbilityConstitution)
		for i := 0; i < hitDiceToUse; i++ {
			roll, err := roller.Roll(size)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to roll hit die d%d", size)
			}
			heal := max(1, roll+conMod)
			result.Rolls = append(result.Rolls, HitDieRoll{Roll: roll, HealAmount: heal})
			result.Healing += heal
		}
		c.HP = ApplyHealing(c.HP, result.Healing)
		c.Resources.HitDice.Current -= hitDiceToUse
	}

	hd := &c.Resources.HitDice
	before := hd.Current
	hd.Current = min(hd.Max, hd.Current+ceilDiv(hd.Max, 2))
	result.HitDiceRestored = max(0, hd.Current-before)

	for i := range c.Resources.Custom {
		res := &c.Resources.Custom[i]
		if res.RestType == entities.RestShort {
			res.Current = res.Max
			result.ResourcesRestored = append(result.ResourcesRestored, res.Name)
		}
	}

	for i := range c.Abilities {
		ab := &c.Abilities[i]
		if ab.Limited() && ab.RestType == entities.RestShort {
			ab.UsesRemaining = ab.UsesPerRest
			result.AbilitiesRestored++
		}
	}

	if IsWarlock(c.Class) {
		RestoreSpellSlots(c.Spellcasting)
		result.PactMagicRestored = true
	}

	return result, nil
}

// LongRestResult reports what a long rest changed
type LongRestResult struct {
	HPRestored         int  `json:"hpRestored"`
	HitDiceRestored    int  `json:"hitDiceRestored"`
	SpellSlotsRestored bool `json:"spellSlotsRestored"`
	ExhaustionReduced  bool `json:"exhaustionReduced"`
	AbilitiesRestored  int  `json:"abilitiesRestored"`
}

// LongRest fully recovers c in place: hit points, hit dice, spell slots,
// limited abilities and custom resources. Temporary hit points and temporary
// modifiers are cleared and exhaustion drops by one.
func LongRest(c *entities.Character) *LongRestResult {
	result := &LongRestResult{
		HPRestored:      max(0, c.HP.Max-c.HP.Current),
		HitDiceRestored: max(0, c.Resources.HitDice.Max-c.Resources.HitDice.Current),
	}

	c.HP.Current = c.HP.Max
	c.HP.Temporary = 0
	c.Resources.HitDice.Current = c.Resources.HitDice.Max

	if c.Spellcasting != nil && len(c.Spellcasting.SpellSlots) > 0 {
		RestoreSpellSlots(c.Spellcasting)
		result.SpellSlotsRestored = true
	}

	for i := range c.Abilities {
		ab := &c.Abilities[i]
		if ab.Limited() {
			ab.UsesRemaining = ab.UsesPerRest
			result.AbilitiesRestored++
		}
	}

	for i := range c.Resources.Custom {
		c.Resources.Custom[i].Current = c.Resources.Custom[i].Max
	}

	c.TempModifiers = nil

	if c.Exhaustion > 0 {
		c.Exhaustion--
		result.ExhaustionReduced = true
	}

	return result
}
