package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wI2L/jsondiff"

	"github.com/roach88/verso/internal/ir"
)

// NewDiffCommand creates the diff command: a JSON Patch between the
// snapshot states of two commits.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "diff <hashA> <hashB>",
		Short:         "Diff the states of two commits",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			ctx := cmd.Context()

			a, err := env.Commits.Load(ctx, args[0])
			if err != nil {
				return err
			}
			b, err := env.Commits.Load(ctx, args[1])
			if err != nil {
				return err
			}

			aJSON, err := ir.Marshal(a.State)
			if err != nil {
				return fmt.Errorf("marshal state %s: %w", a.Hash, err)
			}
			bJSON, err := ir.Marshal(b.State)
			if err != nil {
				return fmt.Errorf("marshal state %s: %w", b.Hash, err)
			}

			patch, err := jsondiff.CompareJSON(aJSON, bJSON)
			if err != nil {
				return fmt.Errorf("diff states: %w", err)
			}

			out, err := json.MarshalIndent(patch, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
