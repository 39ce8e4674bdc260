package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/composer"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components aggregates the wired application and the adapters the entry
// point needs direct access to.
type Components struct {
	App       *App
	Logger    ports.Logger
	Manifests ports.ManifestLoader
	Composer  *composer.Composer
	Telemetry ports.Telemetry
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			composer.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			manifests, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}
			engine, err := graft.Dep[*composer.Composer](ctx)
			if err != nil {
				return nil, err
			}
			watch, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(manifests, engine, watch, log), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
			composer.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	manifests, err := graft.Dep[ports.ManifestLoader](ctx)
	if err != nil {
		return nil, err
	}
	engine, err := graft.Dep[*composer.Composer](ctx)
	if err != nil {
		return nil, err
	}
	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}
	return &Components{
		App:       application,
		Logger:    log,
		Manifests: manifests,
		Composer:  engine,
		Telemetry: telemetry,
	}, nil
}
