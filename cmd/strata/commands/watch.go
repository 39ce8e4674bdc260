package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate the manifest whenever its input files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context(), options(cmd))
		},
	}
	cmd.Flags().BoolP("rolling", "r", false, "Include the rolling overlay")
	return cmd
}
