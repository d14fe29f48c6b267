package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/bikeyard/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bikeyard",
	Short: "Bike Yard storefront server",
	Long: `Bike Yard storefront: product catalog, cafe menu and static pages.

Without a subcommand it runs the HTTP server (same as "bikeyard serve").
Configuration comes from BIKEYARD_* environment variables and an optional .env file.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("❌ bikeyard failed: %v", err)
	}
}

// commandContext returns the command context, which is nil outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
