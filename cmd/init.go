package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/output"
	"github.com/fitsync/fitsync/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the local fitsync database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.DataDir()
		if err != nil {
			return err
		}
		st, err := store.Initialize(dir)
		if err != nil {
			return err
		}
		defer st.Close()

		output.Success("database ready in %s", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
