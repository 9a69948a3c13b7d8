//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"

	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/isolation"
)

// The admin connection owns the canonical tables and is not subject to the
// row-level-security policy, so these tests verify the tagging and clearing
// behavior; visibility enforcement is exercised by the application roles in
// the browser suites.
func TestTenantStrategyClearsOnlyTheWorkersRows(t *testing.T) {
	ctx := context.Background()
	_, gw := newManager(t, ctx)

	strategy := isolation.NewTenantStrategy(gw, nil)
	if err := strategy.Prepare(ctx, 0); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	// Preparing again must converge, not fail.
	if err := strategy.Prepare(ctx, 0); err != nil {
		t.Fatalf("Repeated prepare failed: %v", err)
	}

	if err := gw.Exec(ctx, `DELETE FROM public.accounts WHERE tenant_label IN ('w0', 'w1')`); err != nil {
		t.Fatalf("Failed to reset fixture rows: %v", err)
	}
	for _, row := range []struct{ name, label string }{
		{"W0 Checking", "w0"},
		{"W0 Savings", "w0"},
		{"W1 Checking", "w1"},
	} {
		if err := gw.Exec(ctx,
			`INSERT INTO public.accounts (name, tenant_label) VALUES ($1, $2)`,
			row.name, row.label); err != nil {
			t.Fatalf("Failed to insert tagged account: %v", err)
		}
	}

	if err := strategy.Reset(ctx, 0); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	type row struct {
		Count int64 `db:"count"`
	}
	counts, err := db.Select[row](ctx, gw,
		`SELECT count(*) AS count FROM public.accounts WHERE tenant_label = $1`, "w0")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if counts[0].Count != 0 {
		t.Errorf("Expected worker 0's rows to be gone, found %d", counts[0].Count)
	}

	counts, err = db.Select[row](ctx, gw,
		`SELECT count(*) AS count FROM public.accounts WHERE tenant_label = $1`, "w1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if counts[0].Count != 1 {
		t.Errorf("Expected worker 1's row to survive, found %d", counts[0].Count)
	}
}
