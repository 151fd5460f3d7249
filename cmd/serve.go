package cmd

import (
	"fmt"

	"github.com/mlin/bilingo/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// runServe opens the store, wires the services, and serves HTTP until
// interrupted.
func runServe(cmd *cobra.Command) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}

	a, err := app.New(dbPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(cmd.Context())
}
