package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"plenum/internal/platform/db"
	"plenum/internal/platform/logging"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|redo|version]",
	Short:     "Run the embedded SQL migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "redo", "version"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

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

	if err := db.MigrateCommand(cmd.Context(), pool, command); err != nil {
		return err
	}
	logger.Info("migrations finished", "command", command)
	return nil
}
