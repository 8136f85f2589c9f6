package main

import (
	"github.com/spf13/cobra"

	"plenum/internal/app/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := server.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(cmd.Context())
}
