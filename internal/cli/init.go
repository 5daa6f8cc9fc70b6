package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DefaultBranch is the branch HEAD points at after init.
const DefaultBranch = "main"

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Initialize a repository",
		Long:          "Create the storage layout and point HEAD at an unborn main branch. The first commit materializes the branch ref.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Refs.SetHead(cmd.Context(), DefaultBranch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized repository on branch %s\n", DefaultBranch)
			return nil
		},
	}
}
