package client

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	v1 "github.com/dabidoe/character-foundry/internal/handlers/api/v1"
)

var rollDescription string

var rollDiceCmd = &cobra.Command{
	Use:   "roll-dice [notation] [entity-id] [context]",
	Short: "Roll dice using dice notation",
	Long: `Roll dice and see individual results. Examples:

  roll-dice 4d6 char-123 ability-scores
  roll-dice 1d20+5 char-456 attack
  roll-dice 2d8 char-789 damage`,
	Args: cobra.ExactArgs(3),
	RunE: rollDice,
}

func init() {
	rollDiceCmd.Flags().StringVar(&rollDescription, "description", "", "Description stored with the roll")
}

func rollDice(cmd *cobra.Command, args []string) error {
	notation := args[0]
	entityID := args[1]
	rollContext := args[2]

	ctx, cancel := requestContext(cmd)
	defer cancel()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Rolling %s for entity %s (context: %s)...\n", notation, entityID, rollContext)

	var resp v1.RollDiceResponse
	err := newAPIClient().call(ctx, http.MethodPost, "/dice/roll", nil, map[string]string{
		"entityId":    entityID,
		"context":     rollContext,
		"notation":    notation,
		"description": rollDescription,
	}, &resp)
	if err != nil {
		return fmt.Errorf("failed to roll dice: %w", err)
	}

	fmt.Fprintf(w, "\n🎲 Dice Roll Result:\n")
	fmt.Fprintf(w, "===================\n")
	if resp.Roll != nil {
		fmt.Fprintf(w, "  Roll ID: %s\n", resp.Roll.RollID)
		fmt.Fprintf(w, "  Individual Dice: %v\n", resp.Roll.Dice)
		if len(resp.Roll.Dropped) > 0 {
			fmt.Fprintf(w, "  Dropped: %v\n", resp.Roll.Dropped)
		}
		fmt.Fprintf(w, "  Breakdown: %s\n", resp.Roll.Breakdown)
		fmt.Fprintf(w, "  Total: %d\n", resp.Roll.Total)
	}

	if resp.Session != nil {
		fmt.Fprintf(w, "\nSession expires at: %s\n", resp.Session.ExpiresAt.Format("15:04:05"))
		fmt.Fprintf(w, "Total rolls in session: %d\n", len(resp.Session.Rolls))
	}

	return nil
}
