package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/aggregate"
	"github.com/mealtrack/mealsync/internal/syncer"
)

// BreakdownOptions holds flags for the breakdown command.
type BreakdownOptions struct {
	*RootOptions
	Weeks  int
	Months int
}

// NewBreakdownCommand creates the breakdown command.
func NewBreakdownCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BreakdownOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show weekly and monthly averages",
		Long: `Show per-period totals and tracked-day averages. Weeks are
7-day windows ending today; months are calendar months. Off days do
not count against the averages.

Example:
  mealsync breakdown
  mealsync breakdown --weeks 8 --months 0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBreakdown(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Weeks, "weeks", 4, "number of weekly windows")
	cmd.Flags().IntVar(&opts.Months, "months", 3, "number of calendar months")
	return cmd
}

func runBreakdown(opts *BreakdownOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.close()

	view, err := a.sync.Breakdown(ctx, opts.Weeks, opts.Months)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build breakdown", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}
	return formatter.SuccessText(renderBreakdown(view), view)
}

func renderBreakdown(view syncer.BreakdownView) string {
	var b strings.Builder

	if view.Offline {
		b.WriteString("Offline: showing local data only.\n\n")
	}

	if len(view.Weeks) > 0 {
		b.WriteString("Weekly:\n")
		writePeriodHeader(&b)
		for _, p := range view.Weeks {
			writePeriodRow(&b, fmt.Sprintf("%s .. %s", p.Start, p.End), p)
		}
		b.WriteString("\n")
	}

	if len(view.Months) > 0 {
		b.WriteString("Monthly:\n")
		writePeriodHeader(&b)
		for _, p := range view.Months {
			writePeriodRow(&b, p.Label, p)
		}
	}

	return b.String()
}

func writePeriodHeader(b *strings.Builder) {
	fmt.Fprintf(b, "  %-26s %8s %8s %9s %7s %7s %6s\n",
		"period", "tracked", "off", "avg kcal", "prot", "carbs", "fats")
}

func writePeriodRow(b *strings.Builder, label string, p aggregate.PeriodSummary) {
	fmt.Fprintf(b, "  %-26s %8d %8d %9.0f %6.1fg %6.1fg %5.1fg\n",
		label, p.TrackedDays, p.OffDayCount,
		p.Averages.Calories, p.Averages.Protein, p.Averages.Carbs, p.Averages.Fats)
}
