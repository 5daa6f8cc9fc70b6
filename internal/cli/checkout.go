package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/verso/internal/dag"
)

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:           "checkout <branch>",
		Short:         "Point HEAD at a branch",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Branches.Checkout(cmd.Context(), args[0], dag.CheckoutOptions{Create: create}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&create, "create", "b", false, "create the branch first")
	return cmd
}
