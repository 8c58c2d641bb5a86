package main

import (
	"fmt"
	"os"

	"bookstore-proxy/pkg/container"

	"github.com/spf13/cobra"
)

// Global container, built once before any subcommand runs
var appContainer *container.Container

var rootCmd = &cobra.Command{
	Use:   "assets",
	Short: "Maintenance tasks for stored book cover images",
	Long: "Inspect and clean the cover images the proxy has stored.\n\n" +
		"Uses the same environment (.env, STORAGE_*, MINIO_*, UPSTREAM_BASE_URL) as the API server.",
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(orphansCmd)
}

func initializeApp(cmd *cobra.Command, args []string) error {
	if appContainer != nil {
		return nil
	}

	c, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	appContainer = c
	return nil
}
