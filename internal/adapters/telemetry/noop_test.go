package telemetry_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/telemetry"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

func TestNoOp_Record(t *testing.T) {
	t.Parallel()

	tel := telemetry.NewNoOp()

	ctx, vertex := tel.Record(t.Context(), "fetch NixOS/nixpkgs@abc123")
	require.NotNil(t, ctx)
	require.NotNil(t, vertex)

	// The vertex is reachable from the returned context.
	got, ok := ports.VertexFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, vertex, got)
}

func TestNoOpVertex_Writers(t *testing.T) {
	t.Parallel()

	_, vertex := telemetry.NewNoOp().Record(t.Context(), "build mytool")

	_, err := io.WriteString(vertex.Stdout(), "out")
	require.NoError(t, err)
	_, err = io.WriteString(vertex.Stderr(), "err")
	require.NoError(t, err)

	vertex.Log(domain.LogLevelDebug, "unpacked")
	vertex.Cached()
	vertex.Complete(nil)
	vertex.Complete(zerr.New("late failure"))
}

func TestNoOp_Close(t *testing.T) {
	t.Parallel()

	assert.NoError(t, telemetry.NewNoOp().Close())
}

func TestVertexFromContext_Absent(t *testing.T) {
	t.Parallel()

	_, ok := ports.VertexFromContext(t.Context())
	assert.False(t, ok)
}
