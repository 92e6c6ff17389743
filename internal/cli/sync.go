package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/syncer"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued writes against the server",
		Long: `Drain the pending mutation queue in order, oldest first.

The drain stops at the first failure; the failed write and everything
queued after it stay in the queue for the next attempt.

Example:
  mealsync sync
  mealsync sync --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
	return cmd
}

type syncData struct {
	Replayed    int    `json:"replayed"`
	Remaining   int    `json:"remaining"`
	FailureCode string `json:"failure_code,omitempty"`
	FailedSeq   int64  `json:"failed_seq,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}

	report, err := a.sync.TriggerSync(ctx)
	if err != nil {
		_ = formatter.Error(string(report.FailureCode), err.Error(), nil)
		return WrapExitError(ExitFailure, "sync stopped", err)
	}

	data := syncData{
		Replayed:   len(report.Succeeded),
		Remaining:  report.Remaining,
		DurationMS: report.Duration.Milliseconds(),
	}
	if report.Failed != nil {
		data.FailureCode = string(report.FailureCode)
		data.FailedSeq = report.Failed.Seq
	}

	if err := formatter.SuccessText(renderSync(report), data); err != nil {
		return err
	}
	if report.Failed != nil {
		return NewExitError(ExitFailure, "sync stopped at a rejected write")
	}
	return nil
}

func renderSync(report syncer.SyncReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Replayed %d write(s) in %s.\n", len(report.Succeeded), report.Duration.Round(time.Millisecond))
	if report.Failed != nil {
		fmt.Fprintf(&b, "Stopped at #%d (%s %s): %s. %d write(s) still queued.\n",
			report.Failed.Seq, report.Failed.Op, report.Failed.Target,
			report.FailureCode, report.Remaining)
	}
	return b.String()
}
