package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wildmint-labs/wildmint/internal/evalcmd"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Classifier evaluation tools",
		Long: `Evaluation tools for measuring how well the configured vision model
tells animals from non-animals and names their species.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())

	return cmd
}
