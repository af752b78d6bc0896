// Package main provides a tool to load the sample catalog into the database.
//
// Usage:
//
//	go run ./cmd/seed run                       # load categories, tags and products
//	go run ./cmd/seed run --db-path ./dev.db
//	go run ./cmd/seed status                    # print row counts
//	go run ./cmd/seed run --quiet               # summary only, no logs
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	dbPath string
	quiet  bool
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Load the sample catalog",
	Long:          "Seed writes the sample categories, tags and products through the catalog services.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "Path to the SQLite database (default: $DB_PATH or ~/.catalog/catalog.db)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output; only the summary is printed")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}
