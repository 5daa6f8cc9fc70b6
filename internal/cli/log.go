package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "log [ref]",
		Short:         "Show first-parent history",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			from := ""
			if len(args) == 1 {
				from = args[0]
			}
			history, err := env.Branches.Log(cmd.Context(), from, limit)
			if err != nil {
				return err
			}

			return emit(cmd.OutOrStdout(), rootOpts.Format, history, func(w io.Writer) {
				for _, c := range history {
					when := time.UnixMilli(c.Timestamp).UTC().Format(time.RFC3339)
					fmt.Fprintf(w, "%s  %s  %s  %s\n", c.Hash[:12], when, c.Author, c.Message)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits")
	return cmd
}
