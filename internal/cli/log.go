package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/nutrition"
	"github.com/mealtrack/mealsync/internal/syncer"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Date     string
	MealType string
	Portions float64
	Notes    string
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <food-name-or-id>",
		Short: "Log a meal",
		Long: `Log a single-food meal. The food is looked up by ID or by name
on the server (or the cached food list when offline).

Nutrition is snapshotted at log time; later edits to the food do not
change this entry. When the server is unreachable the entry is queued
and replayed on the next sync.

Example:
  mealsync log "Chicken Breast" --portions 1.5 --type lunch
  mealsync log 42 --type snack --date 2026-03-09`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "entry date (YYYY-MM-DD; defaults to today)")
	cmd.Flags().StringVar(&opts.MealType, "type", string(nutrition.Snack), "meal type (breakfast|lunch|dinner|snack)")
	cmd.Flags().Float64Var(&opts.Portions, "portions", 1, "number of servings")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-text note")

	return cmd
}

func runLog(opts *LogOptions, foodArg string, cmd *cobra.Command) error {
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
	mealType := nutrition.MealType(opts.MealType)
	if !mealType.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown meal type %q", opts.MealType))
	}

	food, err := resolveFood(ctx, a, foodArg)
	if err != nil {
		return err
	}

	res, err := a.sync.LogMeal(ctx, food, opts.Portions, mealType, date, opts.Notes)
	if err != nil {
		return WrapExitError(ExitFailure, "log rejected", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}
	return formatter.SuccessText(renderWrite("Logged", res), res)
}

// resolveDate defaults an empty date string to today.
func resolveDate(raw string) (nutrition.Date, error) {
	if raw == "" {
		return nutrition.DateOf(timeNow()), nil
	}
	return nutrition.ParseDate(raw)
}

// resolveFood looks up a food by numeric ID or case-insensitive name
// match against the server's food list. The cached list serves lookups
// while offline.
func resolveFood(ctx context.Context, a *app, arg string) (nutrition.Food, error) {
	res, _, err := a.sync.Client().Foods(ctx, arg)
	if err != nil {
		if fetch.IsOffline(err) {
			return nutrition.Food{}, NewExitError(ExitFailure, "offline with no cached food list; cannot resolve the food")
		}
		return nutrition.Food{}, WrapExitError(ExitFailure, "food lookup failed", err)
	}

	lowered := strings.ToLower(strings.TrimSpace(arg))
	for _, f := range res.Foods {
		if fmt.Sprint(f.ID) == arg || strings.ToLower(f.Name) == lowered {
			return f, nil
		}
	}
	if len(res.Foods) == 1 {
		return res.Foods[0], nil
	}
	return nutrition.Food{}, NewExitError(ExitFailure, fmt.Sprintf("no food matches %q", arg))
}

// renderWrite says what happened to a write: confirmed now or queued.
func renderWrite(verb string, res syncer.WriteResult) string {
	if res.Queued {
		return fmt.Sprintf("%s (queued as #%d; server unreachable, will sync later).\n", verb, res.Seq)
	}
	return fmt.Sprintf("%s and confirmed by the server.\n", verb)
}
