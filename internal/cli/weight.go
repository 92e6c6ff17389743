package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/api"
)

// NewWeightCommand creates the weight command group.
func NewWeightCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Log and review body weight",
	}
	cmd.AddCommand(newWeightLogCommand(rootOpts))
	cmd.AddCommand(newWeightHistoryCommand(rootOpts))
	return cmd
}

func newWeightLogCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date  string
		notes string
	)
	cmd := &cobra.Command{
		Use:   "log <kg>",
		Short: "Record a weight sample",
		Long: `Record a weight sample.

Example:
  mealsync weight log 81.4
  mealsync weight log 81.4 --date 2026-03-08`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid weight", err)
			}

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
			res, err := a.sync.LogWeight(ctx, weight, d, notes)
			if err != nil {
				return WrapExitError(ExitFailure, "weight rejected", err)
			}

			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: os.Stderr,
				Verbose:   rootOpts.Verbose,
			}
			return formatter.SuccessText(renderWrite(fmt.Sprintf("Weight %.1f logged", weight), res), res)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "sample date (YYYY-MM-DD; defaults to today)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text note")
	return cmd
}

func newWeightHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent weight samples and the trend",
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

			res, fromCache, err := a.sync.Client().Weight(ctx, limit)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to load weight history", err)
			}

			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: os.Stderr,
				Verbose:   rootOpts.Verbose,
			}
			return formatter.SuccessText(renderWeight(res, fromCache), res)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of samples to show")
	return cmd
}

func renderWeight(res api.WeightResponse, fromCache bool) string {
	var b strings.Builder
	if !res.Progress.HasData {
		return "No weight samples yet.\n"
	}
	b.WriteString("Weight history")
	if fromCache {
		b.WriteString(" (cached)")
	}
	b.WriteString(":\n")
	for _, sample := range res.History {
		fmt.Fprintf(&b, "  %s  %6.1f", sample.RecordedAt.Format("2006-01-02"), sample.Weight)
		if sample.Notes != "" {
			fmt.Fprintf(&b, "  %s", sample.Notes)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Change %+.1f since start; recent trend %s (%+.1f).\n",
		res.Progress.Change, res.Progress.Dir, res.Progress.Trend)
	return b.String()
}
