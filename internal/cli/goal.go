package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealtrack/mealsync/internal/nutrition"
)

// NewGoalCommand creates the goal command.
func NewGoalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal <bulk|cut|maintain>",
		Short: "Set the nutrition goal",
		Long: `Switch the goal type. Bulking adds 300 kcal to the maintenance
baseline, cutting subtracts 500, maintenance leaves it unchanged.

Example:
  mealsync goal cut`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.close()

			goal := nutrition.GoalType(args[0])
			res, err := a.sync.SetGoal(ctx, goal)
			if err != nil {
				return WrapExitError(ExitFailure, "goal rejected", err)
			}

			info := goal.Info()
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: os.Stderr,
				Verbose:   rootOpts.Verbose,
			}
			return formatter.SuccessText(
				renderWrite(fmt.Sprintf("Goal set to %s (%+d kcal)", info.Name, info.CalorieModifier), res),
				res)
		},
	}
	return cmd
}
