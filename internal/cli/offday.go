package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/nutrition"
)

// NewOffDayCommand creates the offday command group.
func NewOffDayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offday",
		Short: "Mark or unmark rest days",
		Long: `Off days are excluded from averages and do not break streaks.
The reason must be one of: ` + reasonList() + `.`,
	}
	cmd.AddCommand(newOffDayAddCommand(rootOpts))
	cmd.AddCommand(newOffDayRemoveCommand(rootOpts))
	return cmd
}

func reasonList() string {
	names := make([]string, len(nutrition.OffDayReasons))
	for i, r := range nutrition.OffDayReasons {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func newOffDayAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date   string
		reason string
		notes  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Mark a date as an off day",
		Long: `Mark a date as an off day.

Example:
  mealsync offday add --reason holiday
  mealsync offday add --date 2026-03-08 --reason travel --notes "red-eye flight"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			d, err := resolveDate(date)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid date", err)
			}
			res, err := a.sync.AddOffDay(ctx, d, nutrition.OffDayReason(reason), notes)
			if err != nil {
				return WrapExitError(ExitFailure, "off day rejected", err)
			}

			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: os.Stderr,
				Verbose:   rootOpts.Verbose,
			}
			return formatter.SuccessText(renderWrite(fmt.Sprintf("Off day %s recorded", d), res), res)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to mark (YYYY-MM-DD; defaults to today)")
	cmd.Flags().StringVar(&reason, "reason", "", "off-day reason (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text note")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newOffDayRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Clear a date's off-day marker",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			d, err := resolveDate(date)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid date", err)
			}
			res, err := a.sync.RemoveOffDay(ctx, d)
			if err != nil {
				return WrapExitError(ExitFailure, "removal rejected", err)
			}

			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: os.Stderr,
				Verbose:   rootOpts.Verbose,
			}
			return formatter.SuccessText(renderWrite(fmt.Sprintf("Off day %s removed", d), res), res)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to clear (YYYY-MM-DD; defaults to today)")
	return cmd
}
