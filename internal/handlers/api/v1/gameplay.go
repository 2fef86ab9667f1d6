package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dabidoe/character-foundry/internal/orchestrators/character"
)

type rollSkillRequest struct {
	SkillName    string `json:"skillName"`
	Advantage    bool   `json:"advantage"`
	Disadvantage bool   `json:"disadvantage"`
}

// RollSkill handles POST /api/characters/:id/roll/skill
func (h *Handler) RollSkill(c *gin.Context) {
	var req rollSkillRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.RollSkill(c.Request.Context(), &character.RollSkillInput{
		CharacterID:  c.Param("id"),
		Skill:        req.SkillName,
		Advantage:    req.Advantage,
		Disadvantage: req.Disadvantage,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type rollSaveRequest struct {
	Ability      string `json:"ability"`
	Advantage    bool   `json:"advantage"`
	Disadvantage bool   `json:"disadvantage"`
}

// RollSave handles POST /api/characters/:id/roll/save
func (h *Handler) RollSave(c *gin.Context) {
	var req rollSaveRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.RollSave(c.Request.Context(), &character.RollSaveInput{
		CharacterID:  c.Param("id"),
		Ability:      req.Ability,
		Advantage:    req.Advantage,
		Disadvantage: req.Disadvantage,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type attackRequest struct {
	WeaponID      string `json:"weaponId"`
	WeaponName    string `json:"weaponName"`
	AttackType    string `json:"attackType"`
	AttackBonus   *int   `json:"attackBonus"`
	DamageFormula string `json:"damageFormula"`
	Versatile     bool   `json:"versatile"`
	Advantage     bool   `json:"advantage"`
	Disadvantage  bool   `json:"disadvantage"`
}

// Attack handles POST /api/characters/:id/attack
func (h *Handler) Attack(c *gin.Context) {
	var req attackRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.Attack(c.Request.Context(), &character.AttackInput{
		CharacterID:   c.Param("id"),
		WeaponID:      req.WeaponID,
		WeaponName:    req.WeaponName,
		AttackType:    req.AttackType,
		AttackBonus:   req.AttackBonus,
		DamageFormula: req.DamageFormula,
		Versatile:     req.Versatile,
		Advantage:     req.Advantage,
		Disadvantage:  req.Disadvantage,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type damageRequest struct {
	Amount     int    `json:"amount"`
	DamageType string `json:"damageType"`
}

// ApplyDamage handles PATCH /api/characters/:id/damage
func (h *Handler) ApplyDamage(c *gin.Context) {
	var req damageRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.ApplyDamage(c.Request.Context(), &character.ApplyDamageInput{
		CharacterID: c.Param("id"),
		Amount:      req.Amount,
		DamageType:  req.DamageType,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type healRequest struct {
	Amount    int `json:"amount"`
	Temporary int `json:"temporary,omitempty"`
}

// Heal handles PATCH /api/characters/:id/heal
func (h *Handler) Heal(c *gin.Context) {
	var req healRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.Heal(c.Request.Context(), &character.HealInput{
		CharacterID: c.Param("id"),
		Amount:      req.Amount,
		Temporary:   req.Temporary,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type useAbilityRequest struct {
	AbilityID string `json:"abilityId"`
}

// UseAbility handles POST /api/characters/:id/use-ability
func (h *Handler) UseAbility(c *gin.Context) {
	var req useAbilityRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.UseAbility(c.Request.Context(), &character.UseAbilityInput{
		CharacterID: c.Param("id"),
		AbilityID:   req.AbilityID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type castSpellRequest struct {
	SpellID   string `json:"spellId"`
	SlotLevel *int   `json:"slotLevel"`
}

// CastSpell handles POST /api/characters/:id/cast-spell
func (h *Handler) CastSpell(c *gin.Context) {
	var req castSpellRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.characters.CastSpell(c.Request.Context(), &character.CastSpellInput{
		CharacterID: c.Param("id"),
		SpellID:     req.SpellID,
		SlotLevel:   req.SlotLevel,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

type shortRestRequest struct {
	HitDiceToUse int `json:"hitDiceToUse"`
}

// ShortRest handles POST /api/characters/:id/rest/short. The body is
// optional; no body spends no hit dice.
func (h *Handler) ShortRest(c *gin.Context) {
	var req shortRestRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	out, err := h.characters.ShortRest(c.Request.Context(), &character.ShortRestInput{
		CharacterID:  c.Param("id"),
		HitDiceToUse: req.HitDiceToUse,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

// LongRest handles POST /api/characters/:id/rest/long
func (h *Handler) LongRest(c *gin.Context) {
	out, err := h.characters.LongRest(c.Request.Context(), &character.LongRestInput{
		CharacterID: c.Param("id"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}
