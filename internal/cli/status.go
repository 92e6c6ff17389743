package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/store"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pending mutation queue",
		Long: `Show writes accepted locally but not yet confirmed by the server.

Example:
  mealsync status
  mealsync status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
	return cmd
}

type statusData struct {
	Pending []store.Mutation `json:"pending"`
	Count   int              `json:"count"`
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	pending, err := a.sync.QueueStatus(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read queue", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}
	return formatter.SuccessText(renderQueue(pending), statusData{Pending: pending, Count: len(pending)})
}

func renderQueue(pending []store.Mutation) string {
	if len(pending) == 0 {
		return "Queue empty: all writes confirmed.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d pending write(s):\n", len(pending))
	for _, m := range pending {
		fmt.Fprintf(&b, "  #%-4d %-6s %-28s queued %s\n",
			m.Seq, m.Op, m.Target, m.ClientTime.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}
