// Package output provides styled terminal output helpers (success, error,
// warning, diary and session formatting) using lipgloss.
package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/fitsync/fitsync/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

const defaultWidth = 80

// TerminalWidth returns the current terminal width or a fallback.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultWidth
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// Success prints a green checkmark message.
func Success(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Error prints a red error message.
func Error(format string, args ...any) {
	fmt.Println(errorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	fmt.Println(warningStyle.Render("! " + fmt.Sprintf(format, args...)))
}

// Info prints a dimmed informational message.
func Info(format string, args ...any) {
	fmt.Println(subtleStyle.Render(fmt.Sprintf(format, args...)))
}

// FormatDiary renders a daily diary with its entries grouped by meal.
func FormatDiary(diary *models.DailyDiary, entries []models.FoodEntry) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Diary %s", diary.Date)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s / %s kcal   P %s g   C %s g   F %s g\n",
		numberStyle.Render(strconv.Itoa(diary.ConsumedCalories)),
		subtleStyle.Render(strconv.Itoa(diary.GoalCalories)),
		numberStyle.Render(trimFloat(diary.ConsumedProteinG)),
		numberStyle.Render(trimFloat(diary.ConsumedCarbsG)),
		numberStyle.Render(trimFloat(diary.ConsumedFatG)),
	))

	byMeal := map[models.MealType][]models.FoodEntry{}
	for _, e := range entries {
		byMeal[e.MealType] = append(byMeal[e.MealType], e)
	}
	for _, meal := range []models.MealType{models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnack} {
		group := byMeal[meal]
		if len(group) == 0 {
			continue
		}
		b.WriteString(titleStyle.Render("  " + string(meal)))
		b.WriteString("\n")
		for _, e := range group {
			b.WriteString(fmt.Sprintf("    %-30s %6d kcal  %s\n",
				truncate(e.FoodName, 30), e.Calories, subtleStyle.Render(entryIDLabel(e.ID))))
		}
	}
	return b.String()
}

// FormatSession renders a workout session with exercises and sets.
func FormatSession(session *models.ActivityDiary) string {
	var b strings.Builder

	state := "open"
	if !session.Open() {
		state = "completed " + session.EndedAt.Format(time.Kitchen)
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Workout %s", session.Date)))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  (%s)", state)))
	b.WriteString("\n")

	for _, e := range session.Entries {
		b.WriteString(fmt.Sprintf("  %d. %s\n", e.Position+1, e.ExerciseName))
		for i, set := range e.Sets {
			b.WriteString(subtleStyle.Render(
				fmt.Sprintf("     set %d: %d × %s kg\n", i+1, set.Reps, trimFloat(set.WeightKg))))
		}
	}
	return b.String()
}

// FormatTask renders one queued task row for the queue listing.
func FormatTask(t models.Task) string {
	status := string(t.Status)
	switch t.Status {
	case models.TaskCompleted:
		status = successStyle.Render(status)
	case models.TaskFailed:
		status = errorStyle.Render(status)
	default:
		status = warningStyle.Render(status)
	}
	line := fmt.Sprintf("%s  %-24s %s  %s",
		t.CreatedAt.Format("2006-01-02 15:04:05"), t.ActionType, status, subtleStyle.Render(t.ID[:8]))
	if t.Error != "" {
		line += "\n    " + errorStyle.Render(truncate(t.Error, TerminalWidth(defaultWidth)-4))
	}
	return line
}

func entryIDLabel(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
