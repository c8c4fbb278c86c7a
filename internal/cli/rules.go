package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mayalias/internal/rules"
)

// NewRulesCommand prints an algorithm's base program in the canonical
// engine-ingest form.
func NewRulesCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [algorithm]",
		Short: "Print the rule fragment of an algorithm",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := LoadOptions(root.Config)
			if err != nil {
				return err
			}
			algorithm := opts.Algorithm
			if len(args) == 1 {
				algorithm = args[0]
			}

			program, err := rules.Load(algorithm)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), program.String())
			return nil
		},
	}
}
