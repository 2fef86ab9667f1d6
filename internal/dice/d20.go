package dice

import (
	"fmt"
)

// D20Result is a d20 test with optional advantage or disadvantage
type D20Result struct {
	Rolls           []int  `json:"rolls"`
	Roll            int    `json:"roll"`
	Modifier        int    `json:"modifier"`
	Total           int    `json:"total"`
	Advantage       bool   `json:"advantage"`
	Disadvantage    bool   `json:"disadvantage"`
	Breakdown       string `json:"breakdown"`
	CriticalSuccess bool   `json:"isCriticalSuccess"`
	CriticalFailure bool   `json:"isCriticalFailure"`
}

// D20 rolls a d20 test. Advantage keeps the higher of two rolls,
// disadvantage the lower; when both are set they cancel and one die is rolled.
func (r *Roller) D20(modifier int, advantage, disadvantage bool) (*D20Result, error) {
	if advantage && disadvantage {
		advantage, disadvantage = false, false
	}

	first, err := r.Die(20)
	if err != nil {
		return nil, err
	}

	res := &D20Result{
		Rolls:        []int{first},
		Roll:         first,
		Modifier:     modifier,
		Advantage:    advantage,
		Disadvantage: disadvantage,
	}

	if advantage || disadvantage {
		second, err := r.Die(20)
		if err != nil {
			return nil, err
		}
		res.Rolls = append(res.Rolls, second)
		if advantage {
			res.Roll = max(first, second)
		} else {
			res.Roll = min(first, second)
		}
	}

	res.Total = res.Roll + modifier
	res.CriticalSuccess = res.Roll == 20
	res.CriticalFailure = res.Roll == 1
	res.Breakdown = d20Breakdown(res)
	return res, nil
}

func d20Breakdown(res *D20Result) string {
	base := fmt.Sprintf("%d %s %d = %d", res.Roll, sign(res.Modifier), abs(res.Modifier), res.Total)
	switch {
	case res.Advantage:
		return fmt.Sprintf("ADV(%d, %d) = %s", res.Rolls[0], res.Rolls[1], base)
	case res.Disadvantage:
		return fmt.Sprintf("DIS(%d, %d) = %s", res.Rolls[0], res.Rolls[1], base)
	default:
		return base
	}
}

func sign(v int) string {
	if v < 0 {
		return "-"
	}
	return "+"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
