// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/strata/internal/adapters/builder"
	_ "go.trai.ch/strata/internal/adapters/cas"
	_ "go.trai.ch/strata/internal/adapters/config"
	_ "go.trai.ch/strata/internal/adapters/fetch"
	_ "go.trai.ch/strata/internal/adapters/git"
	_ "go.trai.ch/strata/internal/adapters/logger"
	_ "go.trai.ch/strata/internal/adapters/pin"
	_ "go.trai.ch/strata/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/strata/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/strata/internal/app"
	_ "go.trai.ch/strata/internal/engine/composer"
)
