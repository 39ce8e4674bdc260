package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/logger"
	"go.trai.ch/strata/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the manifest loader Graft node.
	NodeID graft.ID = "adapter.manifest_loader"
	// OverlayParserNodeID is the unique identifier for the overlay parser Graft node.
	OverlayParserNodeID graft.ID = "adapter.overlay_parser"
)

func init() {
	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})

	// The same Loader serves both ports; registered separately so dependents
	// can resolve the narrow interface they need.
	graft.Register(graft.Node[ports.OverlayParser]{
		ID:        OverlayParserNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.OverlayParser, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
