package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"plenum/internal/platform/db"
	"plenum/internal/platform/logging"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the configured company and admin user when missing",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Environment)

	pool, err := db.Connect(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if err := db.Seed(cmd.Context(), pool, cfg); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("seed finished", "company", cfg.SeedCompanyName)
	return nil
}
