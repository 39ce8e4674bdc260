package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the composed package collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Show(cmd.Context(), cmd.OutOrStdout(), options(cmd))
		},
	}
	cmd.Flags().BoolP("rolling", "r", false, "Include the rolling overlay")
	return cmd
}
