package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/output"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show sync and queue state",
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Monitor.IsReachable() {
			output.Success("server reachable (%s)", config.GetServerURL())
		} else {
			output.Warning("server unreachable (%s)", config.GetServerURL())
		}

		if config.IsAuthenticated() {
			output.Info("authenticated")
		} else {
			output.Warning("not logged in")
		}

		pending, completed, failed, err := app.Queue.Counts()
		if err != nil {
			return err
		}
		fmt.Printf("queue: %d pending, %d completed, %d failed\n", pending, completed, failed)
		if failed > 0 {
			output.Info("run 'fitsync queue requeue-failed' to retry failed tasks")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
