// Package telemetry provides Telemetry implementations.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
)

// NoOpTelemetry is a no-op implementation of ports.Telemetry.
type NoOpTelemetry struct{}

// NewNoOp creates a new NoOpTelemetry.
func NewNoOp() *NoOpTelemetry {
	return &NoOpTelemetry{}
}

// Record returns a no-op vertex.
func (t *NoOpTelemetry) Record(ctx context.Context, _ string, _ ...ports.VertexOption) (context.Context, ports.Vertex) {
	v := &NoOpVertex{}
	return ports.ContextWithVertex(ctx, v), v
}

// Close does nothing.
func (t *NoOpTelemetry) Close() error { return nil }

// NoOpVertex is a no-op implementation of ports.Vertex.
type NoOpVertex struct{}

// Stdout returns a discarding writer.
func (v *NoOpVertex) Stdout() io.Writer { return io.Discard }

// Stderr returns a discarding writer.
func (v *NoOpVertex) Stderr() io.Writer { return io.Discard }

// Log does nothing.
func (v *NoOpVertex) Log(_ domain.LogLevel, _ string) {}

// Complete does nothing.
func (v *NoOpVertex) Complete(_ error) {}

// Cached does nothing.
func (v *NoOpVertex) Cached() {}
