package builder

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the artifact builder Graft node.
const NodeID graft.ID = "adapter.builder"

func init() {
	graft.Register(graft.Node[ports.ArtifactBuilder]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ArtifactBuilder, error) {
			return NewStager()
		},
	})
}
