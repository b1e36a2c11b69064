package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/output"
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Short:   "Track workout sessions",
	GroupID: "tracking",
}

var workoutNotes string

var workoutStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a workout session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		session, err := app.Activities.StartSession(cmd.Context(), today(), workoutNotes)
		if err != nil {
			return err
		}
		output.Success("session started (%s)", session.ID[:8])
		return nil
	},
}

var workoutExerciseCmd = &cobra.Command{
	Use:   "exercise <name>",
	Short: "Add an exercise to the open session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		entry, err := app.Activities.AddExercise(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.Success("added %s (%s)", entry.ExerciseName, entry.ID[:8])
		return nil
	},
}

var workoutSetCmd = &cobra.Command{
	Use:   "set <exercise-id> <reps> <weight-kg>",
	Short: "Record a set on an exercise",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		reps, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid reps %q", args[1])
		}
		weight, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q", args[2])
		}

		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		entry, err := app.Activities.AddSet(cmd.Context(), args[0], models.ExerciseSet{
			Reps:     reps,
			WeightKg: weight,
		})
		if err != nil {
			return err
		}
		output.Success("%s: %d sets", entry.ExerciseName, len(entry.Sets))
		return nil
	},
}

var workoutDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Close the open session and upload it",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		session, err := app.Activities.CloseSession(cmd.Context())
		if err != nil {
			return err
		}
		app.drainAfterMutation(cmd.Context())

		output.Success("session completed")
		fmt.Print(output.FormatSession(session))
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the session for a date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateArg(args)
		if err != nil {
			return err
		}

		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		session, err := app.Activities.GetActivityDiaryByDate(cmd.Context(), date)
		if err != nil {
			return err
		}
		if session == nil {
			output.Info("no session on %s", date)
			return nil
		}
		fmt.Print(output.FormatSession(session))
		return nil
	},
}

func init() {
	workoutStartCmd.Flags().StringVar(&workoutNotes, "notes", "", "session notes")

	workoutCmd.AddCommand(workoutStartCmd, workoutExerciseCmd, workoutSetCmd, workoutDoneCmd, workoutShowCmd)
	rootCmd.AddCommand(workoutCmd)
}
