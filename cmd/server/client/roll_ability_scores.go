package client

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	v1 "github.com/dabidoe/character-foundry/internal/handlers/api/v1"
)

var abilityMethod string

var rollAbilityScoresCmd = &cobra.Command{
	Use:   "roll-ability-scores [entity-id]",
	Short: "Roll ability scores for character creation",
	Long: `Roll 6 ability scores for D&D character creation.

  Example: roll-ability-scores char-abc123 --method 4d6_reroll_1s`,
	Args: cobra.ExactArgs(1),
	RunE: rollAbilityScores,
}

func init() {
	rollAbilityScoresCmd.Flags().StringVar(&abilityMethod, "method", "", "Rolling method: 4d6_drop_lowest, 3d6 or 4d6_reroll_1s")
}

func rollAbilityScores(cmd *cobra.Command, args []string) error {
	entityID := args[0]

	ctx, cancel := requestContext(cmd)
	defer cancel()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Rolling ability scores for %s...\n", entityID)

	var resp v1.RollAbilityScoresResponse
	err := newAPIClient().call(ctx, http.MethodPost, "/dice/ability-scores", nil, map[string]string{
		"entityId": entityID,
		"method":   abilityMethod,
	}, &resp)
	if err != nil {
		return fmt.Errorf("failed to roll ability scores: %w", err)
	}

	fmt.Fprintf(w, "\n🎲 Ability Score Rolls:\n")
	fmt.Fprintf(w, "======================\n")

	abilities := []string{"Strength", "Dexterity", "Constitution", "Intelligence", "Wisdom", "Charisma"}
	for i, roll := range resp.Rolls {
		abilityName := fmt.Sprintf("Ability %d", i+1)
		if i < len(abilities) {
			abilityName = abilities[i]
		}

		fmt.Fprintf(w, "\n%s:\n", abilityName)
		fmt.Fprintf(w, "  All Dice: %v\n", roll.Dice)
		if len(roll.Dropped) > 0 {
			fmt.Fprintf(w, "  Dropped: %v\n", roll.Dropped)
		}
		fmt.Fprintf(w, "  Final Score: %d\n", roll.Total)
	}

	fmt.Fprintf(w, "\nScores: %v\n", resp.Scores)
	fmt.Fprintf(w, "\n💡 Use 'get-roll-session %s ability_scores' to see them again.\n", entityID)

	return nil
}
