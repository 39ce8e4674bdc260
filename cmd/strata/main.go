// Package main is the entry point for the strata composition tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"github.com/joho/godotenv"
	"go.trai.ch/strata/cmd/strata/commands"
	"go.trai.ch/strata/internal/app"
	_ "go.trai.ch/strata/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Local overrides (e.g. STRATA_DIR) may live in a .env file.
	_ = godotenv.Load()

	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = components.Telemetry.Close() }()

	// 2. Interface - CLI
	cli := commands.New(components.App)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}
