package isolation

import (
	"context"

	"github.com/fluxocertolabs/workerdb/internal/lifecycle"
)

// SchemaStrategy isolates workers by giving each one a cloned schema.
type SchemaStrategy struct {
	manager *lifecycle.Manager
}

// NewSchemaStrategy wraps a lifecycle manager as a Strategy.
func NewSchemaStrategy(manager *lifecycle.Manager) *SchemaStrategy {
	return &SchemaStrategy{manager: manager}
}

func (s *SchemaStrategy) Prepare(ctx context.Context, workerIndex int) error {
	return s.manager.EnsureNamespaceReady(ctx, workerIndex)
}

func (s *SchemaStrategy) Reset(ctx context.Context, workerIndex int) error {
	return s.manager.ClearNamespaceData(ctx, workerIndex)
}

func (s *SchemaStrategy) Teardown(ctx context.Context, workerIndex int) error {
	return s.manager.DropNamespace(ctx, workerIndex)
}
