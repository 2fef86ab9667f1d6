package client

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	v1 "github.com/dabidoe/character-foundry/internal/handlers/api/v1"
)

var getRollSessionCmd = &cobra.Command{
	Use:   "get-roll-session [entity-id] [context]",
	Short: "Get existing dice roll session",
	Long: `Retrieve all dice rolls for a specific entity and context. Examples:

  get-roll-session char-123 ability_scores
  get-roll-session char-456 combat`,
	Args: cobra.ExactArgs(2),
	RunE: getRollSession,
}

func getRollSession(cmd *cobra.Command, args []string) error {
	entityID := args[0]
	rollContext := args[1]

	ctx, cancel := requestContext(cmd)
	defer cancel()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Getting roll session for entity %s (context: %s)...\n", entityID, rollContext)

	var session v1.DiceSessionResponse
	err := newAPIClient().call(ctx, http.MethodGet, "/dice/sessions/"+url.PathEscape(entityID),
		url.Values{"context": []string{rollContext}}, nil, &session)
	if err != nil {
		return fmt.Errorf("failed to get roll session: %w", err)
	}

	fmt.Fprintf(w, "\n📜 Roll Session:\n")
	fmt.Fprintf(w, "================\n")
	for i, roll := range session.Rolls {
		fmt.Fprintf(w, "\nRoll %d:\n", i+1)
		fmt.Fprintf(w, "  Roll ID: %s\n", roll.RollID)
		fmt.Fprintf(w, "  Notation: %s\n", roll.Notation)
		fmt.Fprintf(w, "  Individual Dice: %v\n", roll.Dice)
		fmt.Fprintf(w, "  Total: %d\n", roll.Total)
		if roll.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", roll.Description)
		}
	}

	fmt.Fprintf(w, "\nSession expires at: %s\n", session.ExpiresAt.Format("15:04:05"))
	fmt.Fprintf(w, "Total rolls in session: %d\n", len(session.Rolls))

	return nil
}
