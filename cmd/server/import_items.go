package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
)

var (
	importCategories []string
	importSeed       bool
)

var importItemsCmd = &cobra.Command{
	Use:   "import-items",
	Short: "Import SRD equipment into the item library",
	Long: `Fetch equipment from the D&D 5e SRD API and upsert it into the item library.
Examples:

  import-items
  import-items --category weapon --category armor`,
	Args: cobra.NoArgs,
	RunE: runImportItems,
}

func init() {
	importItemsCmd.Flags().StringSliceVar(&importCategories, "category", nil, "SRD equipment category to import, repeatable (all when empty)")
	importItemsCmd.Flags().BoolVar(&importSeed, "seed", true, "Also write the built-in item catalog")
}

func runImportItems(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	lib, itemRepo, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := itemRepo.Close(); err != nil {
			slog.Warn("Failed to close item library", "error", err)
		}
	}()

	w := cmd.OutOrStdout()

	if importSeed {
		seeded, err := lib.SeedCatalog(ctx, &library.SeedCatalogInput{})
		if err != nil {
			return fmt.Errorf("failed to seed item catalog: %w", err)
		}
		fmt.Fprintf(w, "Catalog: %d created, %d updated\n", seeded.Created, seeded.Updated)
	}

	out, err := lib.ImportSRD(ctx, &library.ImportSRDInput{Categories: importCategories})
	if err != nil {
		return fmt.Errorf("failed to import SRD equipment: %w", err)
	}

	fmt.Fprintf(w, "SRD: %d fetched, %d created, %d updated, %d failed\n",
		out.Fetched, out.Created, out.Updated, out.Failed)
	return nil
}
