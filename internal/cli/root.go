// Package cli implements the verso command line: branch lifecycle,
// commits, history, state diffs, and event-stream merges over a
// configured storage backend.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/verso/internal/dag"
	"github.com/roach88/verso/internal/logging"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json"
	Verbosity  int
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the verso CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "verso",
		Short: "verso - version control for structured data",
		Long:  "Track immutable snapshots of collection state, manage branches over a commit DAG, and merge divergent event streams.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(opts.Verbosity)
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "increase log verbosity")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewBranchCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewCommitCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Env bundles the handles every repository-touching command needs.
type Env struct {
	Config   Config
	Commits  *dag.Commits
	Refs     *dag.RefStore
	Branches *dag.BranchManager
	close    func() error
}

// OpenEnv loads config and opens the configured store.
func OpenEnv(opts *RootOptions) (*Env, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	st, closer, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	commits := dag.NewCommits(st)
	refs := dag.NewRefStore(st)
	return &Env{
		Config:   cfg,
		Commits:  commits,
		Refs:     refs,
		Branches: dag.NewBranchManager(refs, commits),
		close:    closer,
	}, nil
}

// Close releases store resources.
func (e *Env) Close() error {
	return e.close()
}
