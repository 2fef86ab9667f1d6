// Package dice resolves NdS+M notation on top of the rpg-toolkit roller.
package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	toolkit "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/dabidoe/character-foundry/internal/errors"
)

const (
	maxDiceCount = 100
	maxDieSides  = 1000
)

var (
	notationRegex = regexp.MustCompile(`(\d*)d(\d+)(?:\s*([+-])\s*(\d+))?`)
	flatRegex     = regexp.MustCompile(`^[+-]?\d+$`)
	// arithmetic left over on either side of the formula
	trailingMath = regexp.MustCompile(`^\s*(?:[-+*/]|x\s*\d|d?\d)`)
	leadingMath  = regexp.MustCompile(`(?:[-+*/]|\d\s*x)\s*$`)
)

// Expression is a parsed dice formula. A flat expression has no dice and
// rolls to its modifier.
type Expression struct {
	Count    int `json:"count"`
	Sides    int `json:"sides"`
	Modifier int `json:"modifier"`
}

// Flat reports an expression without dice
func (e Expression) Flat() bool {
	return e.Count == 0
}

// String renders the canonical notation, e.g. "2d6+3"
func (e Expression) String() string {
	if e.Flat() {
		return strconv.Itoa(e.Modifier)
	}
	switch {
	case e.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", e.Count, e.Sides, e.Modifier)
	case e.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", e.Count, e.Sides, e.Modifier)
	default:
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
}

// Parse reads "2d6+3", "d20", "1d8 - 1" or a flat number such as "5".
// Descriptive text around the formula is ignored so "1d6 fire" parses as
// 1d6, but further arithmetic such as "1d20+5+3" or "1d6+2d8" is rejected.
func Parse(notation string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(notation))
	if s == "" {
		return Expression{}, errors.InvalidArgument("dice notation is required")
	}

	if flatRegex.MatchString(s) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return Expression{}, errors.InvalidArgumentf("invalid dice notation: %s", notation)
		}
		return Expression{Modifier: v}, nil
	}

	loc := notationRegex.FindStringSubmatchIndex(s)
	if loc == nil {
		return Expression{}, errors.InvalidArgumentf("invalid dice notation: %s (expected format: NdS+M)", notation)
	}
	if leadingMath.MatchString(s[:loc[0]]) || trailingMath.MatchString(s[loc[1]:]) {
		return Expression{}, errors.InvalidArgumentf("unsupported dice notation: %s (expected format: NdS+M)", notation)
	}
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}

	expr := Expression{Count: 1}
	if m[1] != "" {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			return Expression{}, errors.InvalidArgumentf("invalid dice count in notation: %s", notation)
		}
		expr.Count = count
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Expression{}, errors.InvalidArgumentf("invalid die size in notation: %s", notation)
	}
	expr.Sides = sides

	if m[4] != "" {
		mod, err := strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, errors.InvalidArgumentf("invalid modifier in notation: %s", notation)
		}
		if m[3] == "-" {
			mod = -mod
		}
		expr.Modifier = mod
	}

	if expr.Count <= 0 || expr.Sides <= 0 {
		return Expression{}, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}
	if expr.Count > maxDiceCount || expr.Sides > maxDieSides {
		return Expression{}, errors.InvalidArgumentf("dice notation out of range: %s", notation)
	}

	return expr, nil
}

// Result of rolling an expression
type Result struct {
	Notation        string `json:"notation"`
	Rolls           []int  `json:"rolls"`
	DiceTotal       int    `json:"diceTotal"`
	Modifier        int    `json:"modifier"`
	Total           int    `json:"total"`
	Breakdown       string `json:"breakdown"`
	CriticalSuccess bool   `json:"criticalSuccess"`
	CriticalFailure bool   `json:"criticalFailure"`
}

// Roller rolls expressions. The zero value is not usable; use New.
type Roller struct {
	source toolkit.Roller
}

// New wraps a toolkit roller; nil selects the toolkit default
func New(source toolkit.Roller) *Roller {
	if source == nil {
		source = toolkit.DefaultRoller
	}
	return &Roller{source: source}
}

// Die rolls a single die
func (r *Roller) Die(sides int) (int, error) {
	if sides <= 0 {
		return 0, errors.InvalidArgumentf("die size must be positive: %d", sides)
	}
	v, err := r.source.Roll(sides)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to roll d%d", sides)
	}
	return v, nil
}

// Roll parses and rolls notation
func (r *Roller) Roll(notation string) (*Result, error) {
	expr, err := Parse(notation)
	if err != nil {
		return nil, err
	}
	return r.RollExpression(expr)
}

// RollCritical rolls notation with the dice count doubled; the modifier is
// applied once.
func (r *Roller) RollCritical(notation string) (*Result, error) {
	expr, err := Parse(notation)
	if err != nil {
		return nil, err
	}
	expr.Count *= 2
	return r.RollExpression(expr)
}

// RollExpression rolls a parsed expression
func (r *Roller) RollExpression(expr Expression) (*Result, error) {
	res := &Result{
		Notation: expr.String(),
		Modifier: expr.Modifier,
	}

	if !expr.Flat() {
		rolls, err := r.source.RollN(expr.Count, expr.Sides)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll %s", expr)
		}
		res.Rolls = rolls
		for _, v := range rolls {
			res.DiceTotal += v
		}
		if expr.Count == 1 && expr.Sides == 20 {
			res.CriticalSuccess = rolls[0] == 20
			res.CriticalFailure = rolls[0] == 1
		}
	}

	res.Total = res.DiceTotal + res.Modifier
	res.Breakdown = Breakdown(res.Rolls, res.Modifier, res.Total)
	return res, nil
}

// Breakdown renders rolls and modifier as "4 + 5 + 3 = 12"
func Breakdown(rolls []int, modifier, total int) string {
	parts := make([]string, 0, len(rolls)+1)
	for _, v := range rolls {
		parts = append(parts, strconv.Itoa(v))
	}
	out := strings.Join(parts, " + ")
	switch {
	case len(parts) == 0:
		out = strconv.Itoa(modifier)
	case modifier > 0:
		out += fmt.Sprintf(" + %d", modifier)
	case modifier < 0:
		out += fmt.Sprintf(" - %d", -modifier)
	}
	return fmt.Sprintf("%s = %d", out, total)
}
