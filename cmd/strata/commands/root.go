// Package commands implements the CLI commands for the strata tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/app"
	"go.trai.ch/strata/internal/build"
	"go.trai.ch/strata/internal/core/domain"
)

// CLI represents the command line interface for strata.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Compose(ctx context.Context, opts app.Options) (*domain.Composition, error)
	Show(ctx context.Context, w io.Writer, opts app.Options) error
	Watch(ctx context.Context, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "strata",
		Short:         "Compose pinned package collections from overlays",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("manifest", "m", domain.ManifestFileName, "Path of the composition manifest")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newComposeCmd())
	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

// options assembles app options from persistent and command flags.
func options(cmd *cobra.Command) app.Options {
	manifest, _ := cmd.Flags().GetString("manifest")
	rolling, _ := cmd.Flags().GetBool("rolling")
	return app.Options{
		ManifestPath: manifest,
		WithRolling:  rolling,
	}
}
