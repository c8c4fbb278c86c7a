package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mayalias/internal/facts"
	"github.com/roach88/mayalias/internal/ir"
	"github.com/roach88/mayalias/internal/rules"
)

// NewFactsCommand prints the program the fact generator emits for a module,
// without solving it. Useful when a result looks wrong: the facts are the
// analysis input.
func NewFactsCommand(root *RootOptions) *cobra.Command {
	var valueMap bool

	cmd := &cobra.Command{
		Use:   "facts <module.yaml>",
		Short: "Print the generated facts for a module (debug form)",
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

			base, err := rules.Load(opts.Algorithm)
			if err != nil {
				return err
			}
			program := base.Clone()

			gen := facts.New(module)
			if err := gen.Generate(program); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if valueMap {
				fmt.Fprint(out, gen.ValueMapDump())
			}
			fmt.Fprint(out, program.DebugString())
			return nil
		},
	}

	cmd.Flags().BoolVar(&valueMap, "value-map", false, "also print the value→object-id map")
	return cmd
}
