package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mayalias/internal/analysis"
	"github.com/roach88/mayalias/internal/ir"
)

// NewAnalyzeCommand runs the full pipeline over a module file and prints the
// result block.
func NewAnalyzeCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <module.yaml>",
		Short: "Run the points-to analysis over a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := LoadOptions(root.Config)
			if err != nil {
				return err
			}

			module, err := ir.LoadModuleFile(args[0])
			if err != nil {
				return err
			}

			a, err := analysis.New(module, opts)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", args[0], err)
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if opts.PrintProgram {
				fmt.Fprint(out, a.Program().DebugString())
			}
			if opts.PrintPointsTo {
				if err := a.PrintPointsTo(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
