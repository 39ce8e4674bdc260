package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the rolling fetcher Graft node.
const NodeID graft.ID = "adapter.rolling_fetcher"

func init() {
	graft.Register(graft.Node[ports.RollingFetcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RollingFetcher, error) {
			return NewRollingFetcher()
		},
	})
}
