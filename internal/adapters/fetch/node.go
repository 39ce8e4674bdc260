package fetch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the archive fetcher Graft node.
const NodeID graft.ID = "adapter.fetcher"

func init() {
	graft.Register(graft.Node[ports.ArchiveFetcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ArchiveFetcher, error) {
			return NewFetcher()
		},
	})
}
