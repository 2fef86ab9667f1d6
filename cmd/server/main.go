// Package main is the entry point for the Character Foundry server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dabidoe/character-foundry/cmd/server/client"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "character-foundry",
	Short: "Character Foundry API server",
	Long: `Character Foundry serves D&D 5e characters over HTTP and WebSocket: ` +
		`rules, dice, inventory, AI conversation and portrait generation.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(importItemsCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
