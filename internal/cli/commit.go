package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/verso/internal/dag"
	"github.com/roach88/verso/internal/ir"
)

// CommitCLIOptions holds flags for the commit command.
type CommitCLIOptions struct {
	*RootOptions
	Message   string
	Author    string
	StateFile string
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommitCLIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "commit -m <message> --state <file>",
		Short:         "Record a snapshot on the current branch",
		Long:          "Create an immutable, content-addressed commit over a snapshot descriptor and advance the current branch ref.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			return runCommit(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&opts.Author, "author", "", "commit author (defaults to config)")
	cmd.Flags().StringVar(&opts.StateFile, "state", "", "JSON file with the snapshot descriptor")
	cmd.MarkFlagRequired("message")
	cmd.MarkFlagRequired("state")

	return cmd
}

func runCommit(cmd *cobra.Command, env *Env, opts *CommitCLIOptions) error {
	data, err := os.ReadFile(opts.StateFile)
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}
	state, err := ir.FromJSON(data)
	if err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}

	author := opts.Author
	if author == "" {
		author = env.Config.Author
	}

	commit, err := env.Branches.CommitAt(cmd.Context(), state, dag.CommitOptions{
		Message: opts.Message,
		Author:  author,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", commit.Hash, commit.Message)
	return nil
}
