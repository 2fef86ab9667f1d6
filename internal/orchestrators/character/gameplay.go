package character

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dabidoe/character-foundry/internal/dice"
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/rules"
)

const (
	defaultAttackType    = "melee"
	defaultDamageFormula = "1d8"
	defaultDamageType    = "untyped"
)

// dieRoller adapts the expression roller to rules.DieRoller
type dieRoller struct {
	roller *dice.Roller
}

func (d dieRoller) Roll(size int) (int, error) {
	return d.roller.Die(size)
}

func resolveSkill(c *entities.Character, name string) (entities.Skill, bool) {
	if skill, ok := entities.ParseSkill(name); ok {
		return skill, true
	}
	// custom skills live only on the document
	for skill := range c.Skills {
		if strings.EqualFold(string(skill), strings.TrimSpace(name)) {
			return skill, true
		}
	}
	return "", false
}

// RollSkill rolls d20 plus the skill value
func (o *Orchestrator) RollSkill(ctx context.Context, input *RollSkillInput) (*RollSkillOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if strings.TrimSpace(input.Skill) == "" {
		return nil, errors.InvalidArgument("Skill name is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	skill, ok := resolveSkill(c, input.Skill)
	if !ok {
		return nil, errors.NotFound("Skill not found")
	}

	res, err := o.roller.D20(rules.SkillValue(c, skill), input.Advantage, input.Disadvantage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll skill check")
	}

	name := skill.DisplayName()
	narrative := o.narrate(ctx,
		fmt.Sprintf("%s rolls a %s check and gets %d (rolled %d + %d).\n\n"+
			"Generate a dramatic, cinematic 1-sentence description of what they're doing. "+
			"Be vivid and action-focused. Consider if it's a high roll (15+) or low roll (<10).",
			c.Name, name, res.Total, res.Roll, res.Modifier),
		fmt.Sprintf("%s rolled %d for %s.", c.Name, res.Total, name),
	)

	slog.InfoContext(ctx, "Skill check rolled",
		"character_id", c.ID,
		"skill", skill,
		"total", res.Total,
	)

	return &RollSkillOutput{
		Skill:             name,
		Roll:              res.Roll,
		Rolls:             res.Rolls,
		Modifier:          res.Modifier,
		Total:             res.Total,
		Breakdown:         res.Breakdown,
		Narrative:         narrative,
		IsCriticalSuccess: res.CriticalSuccess,
		IsCriticalFailure: res.CriticalFailure,
	}, nil
}

// RollSave rolls d20 plus the saving throw value
func (o *Orchestrator) RollSave(ctx context.Context, input *RollSaveInput) (*RollSaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if strings.TrimSpace(input.Ability) == "" {
		return nil, errors.InvalidArgument("Ability is required")
	}
	ability, ok := entities.ParseAbility(input.Ability)
	if !ok {
		return nil, errors.InvalidArgumentf("unknown ability: %s", input.Ability)
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	res, err := o.roller.D20(rules.SavingThrowValue(c, ability), input.Advantage, input.Disadvantage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll saving throw")
	}

	name := ability.DisplayName()
	narrative := o.narrate(ctx,
		fmt.Sprintf("%s makes a %s saving throw and gets %d (rolled %d + %d).\n\n"+
			"Generate a dramatic, cinematic 1-sentence description. Show whether they succeed or struggle. Be vivid.",
			c.Name, name, res.Total, res.Roll, res.Modifier),
		fmt.Sprintf("%s rolled %d for %s save.", c.Name, res.Total, name),
	)

	return &RollSaveOutput{
		Ability:           name,
		Roll:              res.Roll,
		Rolls:             res.Rolls,
		Modifier:          res.Modifier,
		Total:             res.Total,
		Breakdown:         res.Breakdown,
		Narrative:         narrative,
		IsCriticalSuccess: res.CriticalSuccess,
		IsCriticalFailure: res.CriticalFailure,
	}, nil
}

// Attack rolls to hit and rolls damage. With a WeaponID the bonus and
// formula come from the inventory weapon, otherwise from the input.
func (o *Orchestrator) Attack(ctx context.Context, input *AttackInput) (*AttackOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	weaponName := input.WeaponName
	attackType := input.AttackType
	if attackType == "" {
		attackType = defaultAttackType
	}

	var bonus int
	var damage rules.Damage
	if input.WeaponID != "" {
		idx := c.FindItem(input.WeaponID)
		if idx < 0 {
			return nil, errors.NotFound("Item not found in inventory")
		}
		weapon := &c.Inventory[idx]
		if weapon.Weapon == nil {
			return nil, errors.InvalidArgumentf("%s is not a weapon", weapon.Name)
		}
		bonus = rules.WeaponAttackBonus(c, weapon)
		damage = rules.WeaponDamage(c, weapon, input.Versatile)
		weaponName = weapon.Name
		if input.AttackType == "" && weapon.Weapon.Range != "" {
			attackType = "ranged"
		}
	} else {
		if input.AttackBonus != nil {
			bonus = *input.AttackBonus
		}
		damage = rules.Damage{Formula: input.DamageFormula}
	}
	if damage.Formula == "" {
		damage.Formula = defaultDamageFormula
	}
	if weaponName == "" {
		weaponName = "weapon"
	}

	expr, err := dice.Parse(damage.Formula)
	if err != nil {
		return nil, err
	}

	hit, err := o.roller.D20(bonus, input.Advantage, input.Disadvantage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll attack")
	}

	normal, err := o.roller.RollExpression(expr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll damage")
	}

	out := &AttackOutput{
		Weapon:     weaponName,
		AttackType: attackType,
		Attack: AttackRoll{
			Roll:           hit.Roll,
			Rolls:          hit.Rolls,
			Bonus:          bonus,
			Total:          hit.Total,
			Breakdown:      hit.Breakdown,
			IsCriticalHit:  hit.CriticalSuccess,
			IsCriticalMiss: hit.CriticalFailure,
		},
		Damage: AttackDamage{
			Normal:  normal.Total,
			Formula: damage.Formula,
			Type:    damage.Type,
		},
	}

	// a critical hit rolls the damage dice again; the modifier counts once
	if hit.CriticalSuccess {
		extra, err := o.roller.RollExpression(dice.Expression{Count: expr.Count, Sides: expr.Sides})
		if err != nil {
			return nil, errors.Wrap(err, "failed to roll critical damage")
		}
		critical := normal.Total + extra.DiceTotal
		out.Damage.Critical = &critical
	}

	crit := ""
	if hit.CriticalSuccess {
		crit = "CRITICAL HIT! "
	}
	out.Narrative = o.narrate(ctx,
		fmt.Sprintf("%s makes a %s attack with %s and rolls %d to hit (rolled %d + %d).\n"+
			"%sGenerate a dramatic, cinematic 1-sentence description of the attack. Be vivid and action-focused.",
			c.Name, attackType, weaponName, hit.Total, hit.Roll, bonus, crit),
		fmt.Sprintf("%s attacks with %s and rolls %d!", c.Name, weaponName, hit.Total),
	)

	slog.InfoContext(ctx, "Attack rolled",
		"character_id", c.ID,
		"weapon", weaponName,
		"total", hit.Total,
		"critical", hit.CriticalSuccess,
	)

	return out, nil
}

// ApplyDamage removes hit points, temporary first
func (o *Orchestrator) ApplyDamage(ctx context.Context, input *ApplyDamageInput) (*ApplyDamageOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Amount <= 0 {
		return nil, errors.InvalidArgument("Damage amount must be positive")
	}
	damageType := input.DamageType
	if damageType == "" {
		damageType = defaultDamageType
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	c.HP = rules.ApplyDamage(c.HP, input.Amount)

	saved, err := o.save(ctx, c)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Damage applied",
		"character_id", saved.ID,
		"amount", input.Amount,
		"damage_type", damageType,
		"hp_current", saved.HP.Current,
	)

	return &ApplyDamageOutput{
		HP:          saved.HP,
		DamageTaken: input.Amount,
		DamageType:  damageType,
		Unconscious: rules.Unconscious(saved.HP),
	}, nil
}

// Heal restores hit points up to the maximum
func (o *Orchestrator) Heal(ctx context.Context, input *HealInput) (*HealOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	// either pool may be zero but not both
	if input.Amount < 0 || input.Temporary < 0 || input.Amount+input.Temporary == 0 {
		return nil, errors.InvalidArgument("Heal amount must be positive")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	if input.Amount > 0 {
		c.HP = rules.ApplyHealing(c.HP, input.Amount)
	}
	if input.Temporary > 0 {
		c.HP = rules.GrantTemporaryHP(c.HP, input.Temporary)
	}

	saved, err := o.save(ctx, c)
	if err != nil {
		return nil, err
	}

	return &HealOutput{HP: saved.HP, HealingReceived: input.Amount}, nil
}

func (o *Orchestrator) rollDamage(formula, damageType string) (*RolledDamage, error) {
	res, err := o.roller.Roll(formula)
	if err != nil {
		return nil, err
	}
	return &RolledDamage{
		Total:     res.Total,
		Formula:   formula,
		Type:      damageType,
		Breakdown: res.Breakdown,
	}, nil
}

func attackRoll(res *dice.D20Result, bonus int) *AttackRoll {
	return &AttackRoll{
		Roll:           res.Roll,
		Rolls:          res.Rolls,
		Bonus:          bonus,
		Total:          res.Total,
		Breakdown:      res.Breakdown,
		IsCriticalHit:  res.CriticalSuccess,
		IsCriticalMiss: res.CriticalFailure,
	}
}

// UseAbility resolves a class ability and spends one use when it is limited
func (o *Orchestrator) UseAbility(ctx context.Context, input *UseAbilityInput) (*UseAbilityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.AbilityID == "" {
		return nil, errors.InvalidArgument("Ability ID is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	idx := c.FindAbility(input.AbilityID)
	if idx < 0 {
		return nil, errors.NotFound("Ability not found")
	}
	ability := &c.Abilities[idx]

	if ability.Limited() && ability.UsesRemaining <= 0 {
		return nil, errors.FailedPreconditionf("No uses of %s remaining", ability.Name)
	}

	out := &UseAbilityOutput{Ability: ability.Name}

	if ability.Damage != "" {
		dmg, err := o.rollDamage(ability.Damage, ability.DamageType)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll damage for %s", ability.Name)
		}
		out.Result.Damage = dmg
	}

	if ability.Attack || ability.AttackBonus != 0 {
		res, err := o.roller.D20(ability.AttackBonus, false, false)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll attack for %s", ability.Name)
		}
		out.Result.Attack = attackRoll(res, ability.AttackBonus)
	}

	if ability.Limited() {
		ability.UsesRemaining--
		remaining := ability.UsesRemaining
		out.UsesRemaining = &remaining

		if _, err := o.save(ctx, c); err != nil {
			return nil, err
		}
	}

	damageLine := ""
	if out.Result.Damage != nil {
		damageLine = fmt.Sprintf("They deal %d %s damage.", out.Result.Damage.Total, out.Result.Damage.Type)
	}
	out.Narrative = o.narrate(ctx,
		fmt.Sprintf("%s uses their class ability %q.\n%s\n%s\n"+
			"Generate a dramatic, cinematic 1-sentence description. Be vivid and exciting!",
			c.Name, ability.Name, ability.Description, damageLine),
		fmt.Sprintf("%s uses %s!", c.Name, ability.Name),
	)

	slog.InfoContext(ctx, "Ability used",
		"character_id", c.ID,
		"ability_id", input.AbilityID,
	)

	return out, nil
}

// CastSpell spends a spell slot and resolves the spell's rolls. Cantrips
// are free.
func (o *Orchestrator) CastSpell(ctx context.Context, input *CastSpellInput) (*CastSpellOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SpellID == "" {
		return nil, errors.InvalidArgument("Spell ID is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	sc := c.Spellcasting
	if sc == nil || !sc.Enabled {
		return nil, errors.FailedPreconditionf("%s cannot cast spells", c.Name)
	}

	spell, ok := c.FindSpell(input.SpellID)
	if !ok {
		return nil, errors.NotFound("Spell not found")
	}

	slotLevel := spell.Level
	if input.SlotLevel != nil {
		slotLevel = *input.SlotLevel
	}
	if spell.Level > 0 && slotLevel < spell.Level {
		return nil, errors.InvalidArgumentf("cannot cast a level %d spell with a level %d slot", spell.Level, slotLevel)
	}
	if spell.Level == 0 {
		slotLevel = 0
	}

	if err := rules.UseSpellSlot(sc, slotLevel); err != nil {
		return nil, err
	}

	out := &CastSpellOutput{
		Spell:          spell.Name,
		SlotLevel:      slotLevel,
		SlotsRemaining: sc.SpellSlots[slotLevel].Current,
		Concentration:  spell.Concentration,
	}

	if spell.Damage != "" {
		dmg, err := o.rollDamage(spell.Damage, spell.DamageType)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll damage for %s", spell.Name)
		}
		out.Damage = dmg
	}
	if spell.AttackRoll {
		bonus, _ := rules.SpellAttackBonus(c)
		res, err := o.roller.D20(bonus, false, false)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll spell attack for %s", spell.Name)
		}
		out.Attack = attackRoll(res, bonus)
	}
	if spell.SavingThrow != "" {
		if dc, ok := rules.SpellSaveDC(c); ok {
			out.SaveDC = &dc
		}
		out.SaveAbility = spell.SavingThrow
	}

	if slotLevel > 0 {
		if _, err := o.save(ctx, c); err != nil {
			return nil, err
		}
	}

	out.Narrative = o.narrate(ctx,
		fmt.Sprintf("%s casts %s. %s\nGenerate a dramatic, cinematic 1-sentence description of the spell. Be vivid.",
			c.Name, spell.Name, spell.Description),
		fmt.Sprintf("%s casts %s!", c.Name, spell.Name),
	)

	slog.InfoContext(ctx, "Spell cast",
		"character_id", c.ID,
		"spell", spell.Name,
		"slot_level", slotLevel,
	)

	return out, nil
}

// ShortRest spends hit dice and recovers short rest resources
func (o *Orchestrator) ShortRest(ctx context.Context, input *ShortRestInput) (*ShortRestOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	result, err := rules.ShortRest(c, input.HitDiceToUse, dieRoller{o.roller})
	if err != nil {
		return nil, err
	}

	saved, err := o.save(ctx, c)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("%s takes a short rest and recovers %d HP.", c.Name, result.Healing)
	narrative := fallback
	if input.HitDiceToUse > 0 {
		narrative = o.narrate(ctx,
			fmt.Sprintf("%s takes a short rest after a tough battle. They spend %d hit dice and recover %d hit points.\n"+
				"Generate a brief, atmospheric 1-2 sentence description of their rest. "+
				"Show them catching their breath, tending wounds, or preparing for what's next.",
				c.Name, input.HitDiceToUse, result.Healing),
			fallback,
		)
	}

	slog.InfoContext(ctx, "Short rest taken",
		"character_id", saved.ID,
		"hit_dice_used", result.HitDiceUsed,
		"healing", result.Healing,
	)

	return &ShortRestOutput{
		ShortRestResult: result,
		HP:              saved.HP,
		HitDice:         saved.Resources.HitDice,
		Narrative:       narrative,
	}, nil
}

// LongRest fully recovers the character
func (o *Orchestrator) LongRest(ctx context.Context, input *LongRestInput) (*LongRestOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	result := rules.LongRest(c)

	saved, err := o.save(ctx, c)
	if err != nil {
		return nil, err
	}

	healed := "They were already at full health."
	if result.HPRestored > 0 {
		healed = fmt.Sprintf("They healed %d hit points.", result.HPRestored)
	}
	narrative := o.narrate(ctx,
		fmt.Sprintf("%s finishes a long rest. They've fully recovered their health and magical energy.\n%s\n"+
			"Generate a brief, peaceful 1-2 sentence description of waking refreshed and ready for adventure.",
			c.Name, healed),
		fmt.Sprintf("%s takes a long rest and fully recovers.", c.Name),
	)

	slog.InfoContext(ctx, "Long rest taken",
		"character_id", saved.ID,
		"hp_restored", result.HPRestored,
	)

	return &LongRestOutput{
		LongRestResult: result,
		HP:             saved.HP,
		Exhaustion:     saved.Exhaustion,
		Narrative:      narrative,
	}, nil
}
