package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newComposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Evaluate the manifest and compose the package collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			composition, err := c.app.Compose(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), composition.Fingerprint)
			return nil
		},
	}
	cmd.Flags().BoolP("rolling", "r", false, "Include the rolling overlay")
	return cmd
}
