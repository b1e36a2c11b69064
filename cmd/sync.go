package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/internal/output"
)

var syncWatch bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Drain the offline queue now",
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.Monitor.CheckNow(cmd.Context()) {
			output.Warning("server unreachable; queued work stays pending")
			if !syncWatch {
				return nil
			}
		} else {
			result, err := app.Queue.ProcessQueue(cmd.Context())
			if err != nil {
				return err
			}
			output.Success("completed %d, failed %d, skipped %d",
				result.Completed, result.Failed, result.Skipped)
		}

		if syncWatch {
			output.Info("watching for connectivity changes (ctrl-c to stop)")
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app.Monitor.Start(ctx)
			<-ctx.Done()
			app.Monitor.Stop()
		}
		return nil
	},
}

var queueCmd = &cobra.Command{
	Use:     "queue",
	Short:   "Inspect the offline task queue",
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		tasks, err := app.Queue.ListTasks()
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			output.Info("queue is empty")
			return nil
		}
		for _, t := range tasks {
			fmt.Println(output.FormatTask(t))
		}
		return nil
	},
}

var queueRequeueCmd = &cobra.Command{
	Use:   "requeue-failed",
	Short: "Mark failed tasks pending so the next sync retries them",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.Queue.RequeueFailed(cmd.Context())
		if err != nil {
			return err
		}
		output.Success("requeued %d task(s)", n)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep running and sync on reconnect")

	queueCmd.AddCommand(queueRequeueCmd)
	rootCmd.AddCommand(syncCmd, queueCmd)
}
