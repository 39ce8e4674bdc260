package progrock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/telemetry/progrock"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, progrock.New())
}

func TestRecorder_Record(t *testing.T) {
	rec := progrock.New()

	ctx, vertex := rec.Record(t.Context(), "fetch NixOS/nixpkgs@abc123")
	require.NotNil(t, ctx)
	require.NotNil(t, vertex)

	_, err := vertex.Stdout().Write([]byte("downloading\n"))
	require.NoError(t, err)
	vertex.Log(domain.LogLevelDebug, "unpacked at /store/src-aaaaaaaaaaaa")
	vertex.Complete(nil)

	assert.NoError(t, rec.Close())
}

func TestRecorder_RecordFailure(t *testing.T) {
	rec := progrock.New()

	_, vertex := rec.Record(t.Context(), "build mytool")
	_, err := vertex.Stderr().Write([]byte("boom\n"))
	require.NoError(t, err)
	vertex.Complete(zerr.New("staging failed"))

	assert.NoError(t, rec.Close())
}

func TestRecorder_Cached(t *testing.T) {
	rec := progrock.New()

	_, vertex := rec.Record(t.Context(), "fetch example/extras@cafef00d")
	vertex.Cached()
	vertex.Complete(nil)

	assert.NoError(t, rec.Close())
}
