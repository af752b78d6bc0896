package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/seed"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/store/sqlite"
)

// bootSeeder resolves the database path the same way the server does and
// opens a Seeder over it. The returned func closes the store.
func bootSeeder() (*seed.Seeder, func(), error) {
	var args []string
	if dbPath != "" {
		args = append(args, "-db-path", dbPath)
	}
	cfg, err := config.Load(args)
	if err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Level: level, Environment: cfg.App.Environment, Writer: os.Stderr})
	if quiet {
		log = logger.Discard()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}
	st, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Database opened", "path", cfg.Database.Path)

	s := seed.New(
		service.NewCategoryService(st, log.Logger, cfg.Catalog.CategoryDeletePolicy),
		service.NewTagService(st, log.Logger),
		service.NewProductService(st, log.Logger, nil),
		log.Logger,
	)
	return s, func() { _ = st.Close() }, nil
}

// seed run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load the sample categories, tags and products",
	Long:  "Run loads the sample catalog. Rows that already exist by name are left alone, so it is safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := bootSeeder()
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := s.Run(cmd.Context(), seed.Sample)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Seed run %s\n", report.RunID)
		fmt.Fprintf(out, "  categories created: %d\n", report.Categories)
		fmt.Fprintf(out, "  tags created:       %d\n", report.Tags)
		fmt.Fprintf(out, "  products created:   %d\n", report.Products)
		fmt.Fprintf(out, "  already present:    %d\n", report.Existing)
		return nil
	},
}

// seed status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print how many rows the catalog holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := bootSeeder()
		if err != nil {
			return err
		}
		defer closeStore()

		sum, err := s.Summarize(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "categories: %d\n", sum.Categories)
		fmt.Fprintf(out, "tags:       %d\n", sum.Tags)
		fmt.Fprintf(out, "products:   %d (%d untagged)\n", sum.Products, sum.Untagged)
		return nil
	},
}
