package isolation

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"

	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/schema"
	"github.com/fluxocertolabs/workerdb/internal/worker"
)

// policyName is the per-table row-level-security policy owned by this layer.
const policyName = "worker_isolation"

// TenantStrategy isolates workers inside the canonical tables by tagging
// every row with the worker's tenant label and enforcing visibility with a
// row-level-security policy keyed on the session's app.tenant_label setting.
// Structure is shared; only row visibility is partitioned.
type TenantStrategy struct {
	gw     *db.Gateway
	logger *log.Logger
}

// NewTenantStrategy builds the row-tagging strategy on the given gateway.
func NewTenantStrategy(gw *db.Gateway, logger *log.Logger) *TenantStrategy {
	if logger == nil {
		logger = log.Default()
	}
	return &TenantStrategy{gw: gw, logger: logger}
}

// Prepare ensures the isolation policy exists on every tracked canonical
// table. CREATE POLICY has no IF NOT EXISTS, so it is drop-then-create,
// which keeps the operation idempotent under concurrent invocation.
func (s *TenantStrategy) Prepare(ctx context.Context, workerIndex int) error {
	s.logger.Info("ensuring tenant isolation policies", "worker", workerIndex)

	for _, t := range schema.TrackedTables {
		for _, stmt := range policyStatements(t.Name) {
			if err := s.gw.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("ensure policy on %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// Reset deletes the worker's rows from every tracked table, children before
// parents.
func (s *TenantStrategy) Reset(ctx context.Context, workerIndex int) error {
	label := worker.Allocate(workerIndex).TenantLabel
	s.logger.Debug("clearing tenant-tagged rows", "label", label)

	for i := len(schema.TrackedTables) - 1; i >= 0; i-- {
		stmt := fmt.Sprintf("DELETE FROM %s WHERE tenant_label = $1",
			pgx.Identifier{schema.CanonicalSchema, schema.TrackedTables[i].Name}.Sanitize())
		if err := s.gw.Exec(ctx, stmt, label); err != nil {
			return fmt.Errorf("clear tenant rows in %s: %w", schema.TrackedTables[i].Name, err)
		}
	}
	return nil
}

// Teardown removes the worker's rows. The policies stay: they are shared by
// all workers and harmless for non-test sessions, which carry no label.
func (s *TenantStrategy) Teardown(ctx context.Context, workerIndex int) error {
	return s.Reset(ctx, workerIndex)
}

// policyStatements returns the idempotent per-table policy setup script.
func policyStatements(table string) []string {
	ident := pgx.Identifier{schema.CanonicalSchema, table}.Sanitize()
	policy := pgx.Identifier{policyName}.Sanitize()

	return []string{
		fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", ident),
		fmt.Sprintf("DROP POLICY IF EXISTS %s ON %s", policy, ident),
		fmt.Sprintf(
			"CREATE POLICY %s ON %s USING (tenant_label = current_setting('app.tenant_label', true))",
			policy, ident,
		),
	}
}
