// Package cli wires the analysis into a command-line driver: analyze a
// module, dump its generated facts, or print the rule fragment.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Config  string // path to a YAML options file; empty for defaults
}

// NewRootCommand creates the root command for the mayalias CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mayalias",
		Short: "Datalog-based may-alias analysis",
		Long:  "Computes conservative points-to and may-alias relations for a module by solving Andersen-style inclusion rules.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "options file (YAML)")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewFactsCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))

	return cmd
}
