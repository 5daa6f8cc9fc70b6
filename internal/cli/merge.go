package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/verso/internal/event"
	"github.com/roach88/verso/internal/merge"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Strategy string
}

// NewMergeCommand creates the merge command. It operates on two event-log
// files the caller has already extracted for the divergent branches.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "merge <ours.json> <theirs.json>",
		Short:         "Merge two divergent event streams",
		Long:          "Deduplicate, detect field-level conflicts, optionally auto-resolve them, and print the merged, timestamp-ordered stream.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := OpenEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			return runMerge(cmd, env, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", "", "resolution strategy (ours|theirs|latest|manual)")
	return cmd
}

func runMerge(cmd *cobra.Command, env *Env, opts *MergeOptions, oursPath, theirsPath string) error {
	ours, err := loadLog(oursPath)
	if err != nil {
		return err
	}
	theirs, err := loadLog(theirsPath)
	if err != nil {
		return err
	}

	token := opts.Strategy
	if token == "" {
		token = env.Config.DefaultStrategy
	}
	var mergeOpts merge.Options
	if token != "" {
		strategy, err := merge.Named(token)
		if err != nil {
			return err
		}
		mergeOpts.Strategy = strategy
	}

	result := merge.MergeStreams(ours, theirs, mergeOpts)
	return emit(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) {
		fmt.Fprintf(w, "merged %d events (%d ours, %d theirs) across %d entities\n",
			len(result.Events), result.Stats.FromOurs, result.Stats.FromTheirs,
			result.Stats.EntitiesProcessed)
		for _, c := range result.Conflicts {
			status := "unresolved"
			if c.Resolved {
				status = "resolved"
			}
			if c.Field != "" {
				fmt.Fprintf(w, "conflict %s on %s.%s (%s)\n", c.Type, c.Target, c.Field, status)
			} else {
				fmt.Fprintf(w, "conflict %s on %s (%s)\n", c.Type, c.Target, status)
			}
		}
		if result.Success {
			fmt.Fprintln(w, "merge succeeded")
		} else {
			fmt.Fprintln(w, "merge requires manual resolution")
		}
	})
}

// loadLog validates and parses one event-log file.
func loadLog(path string) ([]event.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	if err := event.ValidateLog(data); err != nil {
		return nil, err
	}
	return event.ParseLog(data)
}
