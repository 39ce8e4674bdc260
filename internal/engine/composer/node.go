package composer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/builder"
	"go.trai.ch/strata/internal/adapters/cas"
	"go.trai.ch/strata/internal/adapters/config"
	"go.trai.ch/strata/internal/adapters/fetch"
	"go.trai.ch/strata/internal/adapters/git"
	"go.trai.ch/strata/internal/adapters/pin"
	"go.trai.ch/strata/internal/adapters/telemetry/progrock"
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the composer Graft node.
const NodeID graft.ID = "engine.composer"

func init() {
	graft.Register(graft.Node[*Composer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			pin.NodeID,
			fetch.NodeID,
			git.NodeID,
			config.OverlayParserNodeID,
			builder.NodeID,
			cas.NodeID,
			progrock.NodeID,
		},
		Run: func(ctx context.Context) (*Composer, error) {
			pins, err := graft.Dep[ports.PinLoader](ctx)
			if err != nil {
				return nil, err
			}
			fetcher, err := graft.Dep[ports.ArchiveFetcher](ctx)
			if err != nil {
				return nil, err
			}
			rolling, err := graft.Dep[ports.RollingFetcher](ctx)
			if err != nil {
				return nil, err
			}
			parser, err := graft.Dep[ports.OverlayParser](ctx)
			if err != nil {
				return nil, err
			}
			stager, err := graft.Dep[ports.ArtifactBuilder](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.ResultStore](ctx)
			if err != nil {
				return nil, err
			}
			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			return NewComposer(pins, fetcher, rolling, parser, stager, store, telemetry), nil
		},
	})
}
