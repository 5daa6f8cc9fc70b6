package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/verso/internal/dag"
)

// BranchOptions holds flags for the branch command.
type BranchOptions struct {
	*RootOptions
	Delete bool
	Force  bool
	Rename bool
	From   string
}

// NewBranchCommand creates the branch command: list with no args, create
// with one, plus --delete and --rename modes.
func NewBranchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BranchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "branch [name] | --delete <name> | --rename <old> <new>",
		Short:         "List, create, delete, or rename branches",
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			return runBranch(cmd, env, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.Delete, "delete", "d", false, "delete the named branch")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "allow deleting the current branch")
	cmd.Flags().BoolVarP(&opts.Rename, "rename", "m", false, "rename <old> to <new>")
	cmd.Flags().StringVar(&opts.From, "from", "", "base commit hash for a new branch")

	return cmd
}

func runBranch(cmd *cobra.Command, env *Env, opts *BranchOptions, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.Rename:
		if len(args) != 2 {
			return fmt.Errorf("--rename requires <old> <new>")
		}
		if err := env.Branches.Rename(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Renamed %s to %s\n", args[0], args[1])
		return nil

	case opts.Delete:
		if len(args) != 1 {
			return fmt.Errorf("--delete requires <name>")
		}
		if err := env.Branches.Delete(ctx, args[0], dag.DeleteOptions{Force: opts.Force}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted branch %s\n", args[0])
		return nil

	case len(args) == 1:
		if err := env.Branches.Create(ctx, args[0], dag.CreateOptions{From: opts.From}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Created branch %s\n", args[0])
		return nil

	default:
		branches, err := env.Branches.List(ctx)
		if err != nil {
			return err
		}
		return emit(out, opts.Format, branches, func(w io.Writer) {
			for _, b := range branches {
				marker := "  "
				if b.IsCurrent {
					marker = "* "
				}
				fmt.Fprintf(w, "%s%s\t%s\n", marker, b.Name, b.Commit)
			}
		})
	}
}
