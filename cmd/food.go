package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/output"
	"github.com/fitsync/fitsync/internal/repo"
)

var foodCmd = &cobra.Command{
	Use:     "food",
	Short:   "Search and manage the food catalog",
	GroupID: "tracking",
}

var foodSearchLimit int

var foodSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the food catalog (cached results work offline)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		foods, err := app.Foods.Search(cmd.Context(), repo.SearchOptions{
			Query: args[0],
			Limit: foodSearchLimit,
		})
		if err != nil {
			return err
		}
		if len(foods) == 0 {
			output.Info("no matches")
			return nil
		}
		for _, f := range foods {
			name := f.Name
			if f.Brand != "" {
				name += " (" + f.Brand + ")"
			}
			fmt.Printf("%-40s %5d kcal / %s %s\n", name, f.Calories,
				trimServing(f.ServingSize), f.ServingUnit)
		}
		return nil
	},
}

var (
	foodName     string
	foodBrand    string
	foodCalories int
	foodProtein  float64
	foodCarbs    float64
	foodFat      float64
)

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom food",
	RunE: func(cmd *cobra.Command, args []string) error {
		if foodName == "" {
			return fmt.Errorf("--name is required")
		}

		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		saved, err := app.Foods.Save(cmd.Context(), &models.Food{
			Name:        foodName,
			Brand:       foodBrand,
			Calories:    foodCalories,
			ProteinG:    foodProtein,
			CarbsG:      foodCarbs,
			FatG:        foodFat,
			ServingSize: 1,
			ServingUnit: "serving",
			Source:      "custom",
		})
		if err != nil {
			return err
		}
		output.Success("saved %s", saved.Name)
		return nil
	},
}

func trimServing(f float64) string {
	if f == float64(int(f)) {
		return fmt.Sprintf("%d", int(f))
	}
	return fmt.Sprintf("%.1f", f)
}

func init() {
	foodSearchCmd.Flags().IntVar(&foodSearchLimit, "limit", 20, "max results")

	foodAddCmd.Flags().StringVar(&foodName, "name", "", "food name")
	foodAddCmd.Flags().StringVar(&foodBrand, "brand", "", "brand")
	foodAddCmd.Flags().IntVar(&foodCalories, "calories", 0, "calories per serving")
	foodAddCmd.Flags().Float64Var(&foodProtein, "protein", 0, "protein grams")
	foodAddCmd.Flags().Float64Var(&foodCarbs, "carbs", 0, "carb grams")
	foodAddCmd.Flags().Float64Var(&foodFat, "fat", 0, "fat grams")

	foodCmd.AddCommand(foodSearchCmd, foodAddCmd)
	rootCmd.AddCommand(foodCmd)
}
