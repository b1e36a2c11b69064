package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version string

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "fitsync",
	Short: "Offline-first nutrition and workout tracker",
	Long: `fitsync - an offline-first nutrition and workout tracking client.

Food and workout entries are written to a local database immediately and
synchronized with the server in the background; work logged while offline
is queued and replayed once connectivity returns.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.AddGroup(
		&cobra.Group{ID: "tracking", Title: "Tracking Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
	)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the fitsync version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("fitsync", version)
		},
	})
}

func initLogging() {
	level := slog.LevelWarn
	if os.Getenv("FITSYNC_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// today returns the current date as YYYY-MM-DD.
func today() string {
	return time.Now().Format("2006-01-02")
}

// parseDateArg returns args[0] validated as YYYY-MM-DD, or today's date when
// args is empty.
func parseDateArg(args []string) (string, error) {
	if len(args) == 0 {
		return today(), nil
	}
	if _, err := time.Parse("2006-01-02", args[0]); err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", args[0])
	}
	return args[0], nil
}
