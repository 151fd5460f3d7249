package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlin/bilingo/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all recorded events and session records",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("refusing to wipe data without --force")
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		if err := st.Reset(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("All learner data removed.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("force", false, "Confirm the wipe")
}
