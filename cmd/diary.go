package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/output"
)

var diaryCmd = &cobra.Command{
	Use:     "diary",
	Short:   "Show and edit the daily food diary",
	GroupID: "tracking",
}

var diaryShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the diary for a date (default today)",
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

		view, err := app.Diaries.GetDailyDiary(cmd.Context(), date, diaryDefaults(app))
		if err != nil {
			return err
		}
		fmt.Print(output.FormatDiary(&view.Diary, view.Entries))
		return nil
	},
}

var (
	logFood     string
	logMeal     string
	logQuantity float64
	logUnit     string
	logCalories int
	logProtein  float64
	logCarbs    float64
	logFat      float64
	logDate     string
)

var diaryLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a food entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if logFood == "" {
			return fmt.Errorf("--food is required")
		}
		if !models.ValidMealType(logMeal) {
			return fmt.Errorf("invalid meal %q (breakfast|lunch|dinner|snack)", logMeal)
		}
		date := logDate
		if date == "" {
			date = today()
		}

		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		entry := &models.FoodEntry{
			FoodName: logFood,
			MealType: models.MealType(logMeal),
			Quantity: logQuantity,
			Unit:     logUnit,
			Calories: logCalories,
			ProteinG: logProtein,
			CarbsG:   logCarbs,
			FatG:     logFat,
		}
		saved, err := app.Diaries.CreateFoodEntry(cmd.Context(), date, entry, diaryDefaults(app))
		if err != nil {
			return err
		}
		app.drainAfterMutation(cmd.Context())

		output.Success("logged %s (%d kcal) for %s", saved.FoodName, saved.Calories, date)
		return nil
	},
}

var diaryDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a food entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Diaries.DeleteFoodEntry(cmd.Context(), args[0]); err != nil {
			return err
		}
		app.drainAfterMutation(cmd.Context())

		output.Success("entry removed")
		return nil
	},
}

// diaryDefaults seeds new diaries with the cached profile's goals.
func diaryDefaults(app *App) *models.ProfileGoals {
	profiles, err := app.Profiles.GetAllLocal()
	if err != nil || len(profiles) == 0 {
		return nil
	}
	goals := profiles[0].Goals()
	return &goals
}

func init() {
	diaryLogCmd.Flags().StringVar(&logFood, "food", "", "food name")
	diaryLogCmd.Flags().StringVar(&logMeal, "meal", "snack", "meal (breakfast|lunch|dinner|snack)")
	diaryLogCmd.Flags().Float64Var(&logQuantity, "quantity", 1, "quantity")
	diaryLogCmd.Flags().StringVar(&logUnit, "unit", "serving", "unit")
	diaryLogCmd.Flags().IntVar(&logCalories, "calories", 0, "calories")
	diaryLogCmd.Flags().Float64Var(&logProtein, "protein", 0, "protein grams")
	diaryLogCmd.Flags().Float64Var(&logCarbs, "carbs", 0, "carb grams")
	diaryLogCmd.Flags().Float64Var(&logFat, "fat", 0, "fat grams")
	diaryLogCmd.Flags().StringVar(&logDate, "date", "", "date (default today)")

	diaryCmd.AddCommand(diaryShowCmd, diaryLogCmd, diaryDeleteCmd)
	rootCmd.AddCommand(diaryCmd)
}
