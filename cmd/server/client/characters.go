package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dabidoe/character-foundry/internal/orchestrators/character"
	"github.com/dabidoe/character-foundry/internal/orchestrators/conversation"
)

var (
	listLimit int
	chatMood  string
)

var listCharactersCmd = &cobra.Command{
	Use:   "list-characters",
	Short: "List stored characters, newest first",
	Args:  cobra.NoArgs,
	RunE:  listCharacters,
}

var chatCmd = &cobra.Command{
	Use:   "chat [character-id] [message]",
	Short: "Send one message to a character",
	Long: `Chat with a character in a given mood. Examples:

  chat char-123 "Who goes there?"
  chat char-123 "Draw your blade!" --mood battle`,
	Args: cobra.ExactArgs(2),
	RunE: chat,
}

func init() {
	listCharactersCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum characters to list")
	chatCmd.Flags().StringVar(&chatMood, "mood", "", "default, battle, angry, injured or triumphant")
}

func listCharacters(cmd *cobra.Command, _ []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	var out character.ListCharactersOutput
	err := newAPIClient().call(ctx, http.MethodGet, "/characters",
		url.Values{"limit": []string{strconv.Itoa(listLimit)}}, nil, &out)
	if err != nil {
		return fmt.Errorf("failed to list characters: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Showing %d of %d characters:\n\n", len(out.Characters), out.Total)
	for _, c := range out.Characters {
		fmt.Fprintf(w, "  %-24s %s, %s %s %d (HP %d/%d)\n",
			c.ID, c.Name, c.Race, c.Class, c.Level, c.HP.Current, c.HP.Max)
	}

	return nil
}

func chat(cmd *cobra.Command, args []string) error {
	characterID := args[0]
	message := args[1]

	ctx, cancel := requestContext(cmd)
	defer cancel()

	var out conversation.ChatOutput
	err := newAPIClient().call(ctx, http.MethodPost, "/characters/"+url.PathEscape(characterID)+"/chat", nil,
		map[string]string{"message": message, "mood": chatMood}, &out)
	if err != nil {
		return fmt.Errorf("failed to chat: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", out.Character, out.Mood, out.Message)
	return nil
}
