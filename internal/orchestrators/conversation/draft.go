package conversation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/rules"
)

const (
	minScore = 1
	maxScore = 30
)

const generationSystemPrompt = `You are a D&D character creator. Generate a complete character based on the user's prompt.

Return ONLY valid JSON in this exact format (no markdown, no code blocks):
{
  "name": "Character Name",
  "race": "Race",
  "class": "Class",
  "level": 1,
  "alignment": "Alignment",
  "background": "Brief background story (2-3 sentences)",
  "personality": "Personality traits and quirks (2-3 sentences)",
  "stats": {
    "hp": 50,
    "maxHp": 50,
    "ac": 15,
    "str": 14,
    "dex": 12,
    "con": 13,
    "int": 10,
    "wis": 11,
    "cha": 8
  },
  "abilities": [
    {
      "name": "Ability Name",
      "description": "What it does",
      "type": "attack|defense|utility|spell",
      "damage": "1d8+2",
      "range": "melee|ranged|self",
      "cooldown": 0
    }
  ],
  "imagePrompt": "Detailed visual description for AI image generation"
}

Make the character interesting and unique. Give them 3-5 abilities that fit their class and concept.`

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

type draftStats struct {
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
	AC    int `json:"ac"`
	Str   int `json:"str"`
	Dex   int `json:"dex"`
	Con   int `json:"con"`
	Int   int `json:"int"`
	Wis   int `json:"wis"`
	Cha   int `json:"cha"`
}

type draftAbility struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Damage      string `json:"damage"`
	Range       string `json:"range"`
	Cooldown    int    `json:"cooldown"`
}

// draft is the character JSON returned by the model
type draft struct {
	Name        string         `json:"name"`
	Race        string         `json:"race"`
	Class       string         `json:"class"`
	Level       int            `json:"level"`
	Alignment   string         `json:"alignment"`
	Background  string         `json:"background"`
	Personality string         `json:"personality"`
	Stats       draftStats     `json:"stats"`
	Abilities   []draftAbility `json:"abilities"`
	ImagePrompt string         `json:"imagePrompt"`
}

// parseDraft pulls the first JSON object out of a model reply, tolerating
// prose or code fences around it
func parseDraft(text string) (*draft, error) {
	raw := jsonObject.FindString(text)
	if raw == "" {
		return nil, errors.External(nil, "No valid JSON found in response")
	}

	var d draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, errors.External(err, "Generated character is not valid JSON")
	}

	d.Name = strings.TrimSpace(d.Name)
	d.Race = strings.TrimSpace(d.Race)
	d.Class = strings.TrimSpace(d.Class)
	if d.Name == "" || d.Race == "" || d.Class == "" {
		return nil, errors.External(nil, "Generated character is missing name, race or class")
	}

	return &d, nil
}

func clampScore(v int) int {
	if v == 0 {
		return 0
	}
	return min(max(v, minScore), maxScore)
}

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// toCharacter converts the draft. Zero scores are left for FillDefaults.
func (d *draft) toCharacter() *entities.Character {
	c := &entities.Character{
		Name:        d.Name,
		Race:        d.Race,
		Class:       d.Class,
		Level:       d.Level,
		Alignment:   d.Alignment,
		Background:  d.Background,
		Personality: d.Personality,
		ImagePrompt: d.ImagePrompt,
		Stats: entities.AbilityScores{
			Str: clampScore(d.Stats.Str),
			Dex: clampScore(d.Stats.Dex),
			Con: clampScore(d.Stats.Con),
			Int: clampScore(d.Stats.Int),
			Wis: clampScore(d.Stats.Wis),
			Cha: clampScore(d.Stats.Cha),
		},
	}

	if d.Stats.MaxHP > 0 {
		c.HP.Max = d.Stats.MaxHP
		c.HP.Current = c.HP.Max
		if d.Stats.HP > 0 && d.Stats.HP < c.HP.Max {
			c.HP.Current = d.Stats.HP
		}
	}
	if d.Stats.AC > 0 {
		c.AC = d.Stats.AC
	}

	seen := make(map[string]int, len(d.Abilities))
	for _, a := range d.Abilities {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		id := slugify(name)
		if n := seen[id]; n > 0 {
			seen[id] = n + 1
			id = id + "-" + strconv.Itoa(n+1)
		} else {
			seen[id] = 1
		}

		ability := entities.ClassAbility{
			ID:          id,
			Name:        name,
			Description: a.Description,
			Type:        strings.ToLower(a.Type),
			Damage:      a.Damage,
			Range:       a.Range,
			UsesPerRest: entities.UnlimitedUses,
		}
		if a.Cooldown > 0 {
			ability.UsesPerRest = 1
			ability.RestType = entities.RestShort
		}
		ability.Attack = ability.Type == "attack" && ability.Damage != ""
		c.Abilities = append(c.Abilities, ability)
	}

	return c
}

// fillAttackBonuses gives attack abilities a bonus once the character's
// proficiency and scores are settled. Spell abilities use the spell attack
// bonus when the class casts.
func fillAttackBonuses(c *entities.Character) {
	weapon := rules.ProficiencyBonus(c) + max(
		rules.Modifier(c, entities.AbilityStrength),
		rules.Modifier(c, entities.AbilityDexterity),
	)
	spell, casts := rules.SpellAttackBonus(c)

	for i := range c.Abilities {
		ab := &c.Abilities[i]
		if ab.Type == "spell" && ab.Damage != "" && casts {
			ab.Attack = true
			ab.AttackBonus = spell
			continue
		}
		if ab.Attack && ab.AttackBonus == 0 {
			ab.AttackBonus = weapon
		}
	}
}
