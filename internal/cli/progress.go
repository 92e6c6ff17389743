package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/aggregate"
	"github.com/mealtrack/mealsync/internal/nutrition"
	"github.com/mealtrack/mealsync/internal/syncer"
)

// ProgressOptions holds flags for the progress command.
type ProgressOptions struct {
	*RootOptions
	Date string
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProgressOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show daily progress against targets",
		Long: `Show everything logged on a date with totals, targets, and
percentages. Queued writes that have not synced yet are included and
marked pending.

Example:
  mealsync progress
  mealsync progress --date 2026-03-09 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgress(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "date to show (YYYY-MM-DD; defaults to today)")
	return cmd
}

func runProgress(opts *ProgressOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	date, err := resolveDate(opts.Date)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid date", err)
	}

	view, err := a.sync.Daily(ctx, date)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build daily view", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}
	return formatter.SuccessText(renderDaily(view), view)
}

func renderDaily(view syncer.DailyView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Progress for %s", view.Date)
	switch {
	case view.Offline:
		b.WriteString(" (offline; local data only)")
	case view.FromCache:
		b.WriteString(" (cached)")
	}
	b.WriteString("\n")

	if view.OffDay != nil {
		fmt.Fprintf(&b, "Off day: %s", view.OffDay.Reason)
		if view.OffDay.Notes != "" {
			fmt.Fprintf(&b, " (%s)", view.OffDay.Notes)
		}
		b.WriteString("\n")
	}

	p := view.Progress
	fmt.Fprintf(&b, "  Calories %7.0f / %-6.0f %s\n", p.Totals.Calories, p.Targets.Calories, progressBar(p.Percentage.Calories))
	fmt.Fprintf(&b, "  Protein  %6.1fg / %-5.0fg %s\n", p.Totals.Protein, p.Targets.Protein, progressBar(p.Percentage.Protein))
	fmt.Fprintf(&b, "  Carbs    %6.1fg / %-5.0fg %s\n", p.Totals.Carbs, p.Targets.Carbs, progressBar(p.Percentage.Carbs))
	fmt.Fprintf(&b, "  Fats     %6.1fg / %-5.0fg %s\n", p.Totals.Fats, p.Targets.Fats, progressBar(p.Percentage.Fats))
	fmt.Fprintf(&b, "  Remaining: %.0f kcal (%+.0f vs target)\n", p.Remaining.Calories, p.DeficitSurplus)
	fmt.Fprintf(&b, "  Macro ratio: %s (protein/carbs/fats)\n", aggregate.MacroRatio(p.Totals.Protein, p.Totals.Carbs, p.Totals.Fats))

	if len(view.Meals) > 0 || len(view.MultiMeals) > 0 {
		b.WriteString("\nMeals:\n")
	}
	entries := aggregate.Entries{Meals: view.Meals, MultiMeals: view.MultiMeals}
	grouped := entries.ByMealType(view.Date)
	for _, mt := range nutrition.MealTypes {
		for _, m := range grouped[mt] {
			fmt.Fprintf(&b, "  %-9s %-28s %6.0f kcal%s\n", m.MealType, entryName(m.FoodName, m.Portions), m.Derived.Calories, pendingTag(m.Pending))
		}
		for _, m := range view.MultiMeals {
			if m.MealType != mt || m.Date != view.Date {
				continue
			}
			totals := m.Totals()
			fmt.Fprintf(&b, "  %-9s %-28s %6.0f kcal%s\n", m.MealType, m.Name, totals.Calories, pendingTag(m.Pending))
		}
	}

	if view.PendingCount > 0 {
		fmt.Fprintf(&b, "\n%d write(s) waiting to sync.\n", view.PendingCount)
	}
	return b.String()
}

func entryName(name string, portions float64) string {
	if portions == 1 {
		return name
	}
	return fmt.Sprintf("%s x%.2g", name, portions)
}

func pendingTag(pending bool) string {
	if pending {
		return "  [pending]"
	}
	return ""
}

// progressBar renders a 20-cell bar from a display-clamped percentage.
func progressBar(rawPct float64) string {
	pct := aggregate.DisplayPercentage(rawPct)
	filled := int(pct / 5)
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", 20-filled),
		rawPct)
}
