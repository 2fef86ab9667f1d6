package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
)

var (
	itemCategory string
	itemRarity   string
	itemSearch   string
	itemLimit    int
)

var listItemsCmd = &cobra.Command{
	Use:   "list-items",
	Short: "Browse the item library",
	Long: `List library items filtered by category and rarity, for example:

  list-items --category weapon
  list-items --rarity rare --search sword`,
	Args: cobra.NoArgs,
	RunE: listItems,
}

func init() {
	listItemsCmd.Flags().StringVar(&itemCategory, "category", "", "Item category such as weapon, armor or potion")
	listItemsCmd.Flags().StringVar(&itemRarity, "rarity", "", "Item rarity such as common or rare")
	listItemsCmd.Flags().StringVar(&itemSearch, "search", "", "Name search")
	listItemsCmd.Flags().IntVar(&itemLimit, "limit", 20, "Maximum items to list")
}

func listItems(cmd *cobra.Command, _ []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	query := url.Values{"limit": []string{strconv.Itoa(itemLimit)}}
	if itemCategory != "" {
		query.Set("category", itemCategory)
	}
	if itemRarity != "" {
		query.Set("rarity", itemRarity)
	}
	if itemSearch != "" {
		query.Set("search", itemSearch)
	}

	var out library.ListItemsOutput
	if err := newAPIClient().call(ctx, http.MethodGet, "/library/items", query, nil, &out); err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Found %d items (showing %d):\n\n", out.Total, len(out.Items))
	for _, item := range out.Items {
		fmt.Fprintf(w, "  %-32s %-10s %-10s %s\n", item.Name, item.Category, item.Rarity, item.GUID)
	}

	return nil
}
