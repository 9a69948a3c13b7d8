//go:build integration
// +build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/lifecycle"
	"github.com/fluxocertolabs/workerdb/internal/schema"
)

func TestEnsureNamespaceReadyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	manager, gw := newManager(t, ctx)

	if err := manager.EnsureNamespaceReady(ctx, 0); err != nil {
		t.Fatalf("First ensure failed: %v", err)
	}
	insertAccount(t, ctx, gw, 0, "W0 Checking")

	if err := manager.EnsureNamespaceReady(ctx, 0); err != nil {
		t.Fatalf("Second ensure failed: %v", err)
	}

	// Same observable state as a single call: all tables present and empty.
	for _, table := range schema.Names() {
		if n := countRows(t, ctx, gw, 0, table); n != 0 {
			t.Errorf("Expected %s to be empty after ensure, got %d rows", table, n)
		}
	}
}

func TestCreateNamespaceSurvivesRepeatedCreation(t *testing.T) {
	ctx := context.Background()
	manager, gw := newManager(t, ctx)

	// Simulates two processes racing on the same worker index: the second
	// create must not fail and must leave one clean copy of each table.
	if err := manager.CreateNamespace(ctx, 1); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	if err := manager.CreateNamespace(ctx, 1); err != nil {
		t.Fatalf("Repeated create failed: %v", err)
	}

	exists, err := manager.NamespaceExists(ctx, 1)
	if err != nil {
		t.Fatalf("Existence check failed: %v", err)
	}
	if !exists {
		t.Fatal("Expected namespace to exist after create")
	}

	for _, table := range schema.Names() {
		if n := countRows(t, ctx, gw, 1, table); n != 0 {
			t.Errorf("Expected %s to be empty after re-create, got %d rows", table, n)
		}
	}
}

func TestWorkersDoNotSeeEachOthersData(t *testing.T) {
	ctx := context.Background()
	manager, gw := newManager(t, ctx)

	for _, index := range []int{0, 1} {
		if err := manager.EnsureNamespaceReady(ctx, index); err != nil {
			t.Fatalf("Ensure for worker %d failed: %v", index, err)
		}
	}

	insertAccount(t, ctx, gw, 0, "W0 Checking")
	insertAccount(t, ctx, gw, 1, "W1 Checking")

	if n := countRows(t, ctx, gw, 0, "accounts"); n != 1 {
		t.Errorf("Expected exactly 1 account in worker 0's schema, got %d", n)
	}
	if n := countRows(t, ctx, gw, 1, "accounts"); n != 1 {
		t.Errorf("Expected exactly 1 account in worker 1's schema, got %d", n)
	}
}

func TestClearNamespaceDataEmptiesEveryTrackedTable(t *testing.T) {
	ctx := context.Background()
	manager, gw := newManager(t, ctx)

	if err := manager.EnsureNamespaceReady(ctx, 0); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	ns := lifecycle.NamespaceName(0)
	accountID := insertAccount(t, ctx, gw, 0, "W0 Checking")
	for i := 0; i < 10; i++ {
		err := gw.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %q.expenses (account_id, description, amount_cents) VALUES ($1, $2, $3)`, ns),
			accountID, fmt.Sprintf("W0 Expense %d", i), int64(100+i))
		if err != nil {
			t.Fatalf("Failed to insert expense: %v", err)
		}
	}
	if err := gw.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %q.notifications (message) VALUES ($1)`, ns),
		"W0 Budget exceeded"); err != nil {
		t.Fatalf("Failed to insert notification: %v", err)
	}

	if err := manager.ClearNamespaceData(ctx, 0); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, table := range schema.Names() {
		if n := countRows(t, ctx, gw, 0, table); n != 0 {
			t.Errorf("Expected %s to have zero rows after clear, got %d", table, n)
		}
	}
}

func TestForeignKeysResolveInsideTheWorkerSchema(t *testing.T) {
	ctx := context.Background()
	manager, gw := newManager(t, ctx)

	for _, index := range []int{0, 1} {
		if err := manager.EnsureNamespaceReady(ctx, index); err != nil {
			t.Fatalf("Ensure for worker %d failed: %v", index, err)
		}
	}

	accountID := insertAccount(t, ctx, gw, 0, "W0 Checking")

	// Referencing a parent in the same worker schema succeeds.
	err := gw.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %q.expenses (account_id, description) VALUES ($1, $2)`,
			lifecycle.NamespaceName(0)),
		accountID, "W0 Groceries")
	if err != nil {
		t.Fatalf("Expected in-schema reference to succeed: %v", err)
	}

	// Referencing a parent that only exists in another worker's schema must
	// fail with a foreign-key violation.
	err = gw.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %q.expenses (account_id, description) VALUES ($1, $2)`,
			lifecycle.NamespaceName(1)),
		accountID, "W1 Groceries")
	if err == nil {
		t.Fatal("Expected cross-schema reference to violate the foreign key")
	}

	var sqlErr *db.SQLError
	if !errors.As(err, &sqlErr) {
		t.Errorf("Expected *db.SQLError with the failing statement, got %T", err)
	}
}

func TestDropNamespaceRemovesAllCatalogObjects(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t, ctx)

	if err := manager.EnsureNamespaceReady(ctx, 2); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := manager.DropNamespace(ctx, 2); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}

	exists, err := manager.NamespaceExists(ctx, 2)
	if err != nil {
		t.Fatalf("Existence check failed: %v", err)
	}
	if exists {
		t.Error("Expected namespace to be absent after drop")
	}

	// Dropping again is a no-op, not an error.
	if err := manager.DropNamespace(ctx, 2); err != nil {
		t.Errorf("Repeated drop failed: %v", err)
	}
}

func TestDropAllNamespaces(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t, ctx)

	const maxWorkers = 3
	for index := 0; index < maxWorkers; index++ {
		if err := manager.EnsureNamespaceReady(ctx, index); err != nil {
			t.Fatalf("Ensure for worker %d failed: %v", index, err)
		}
	}

	if err := manager.DropAllNamespaces(ctx, maxWorkers); err != nil {
		t.Fatalf("Drop-all failed: %v", err)
	}

	names, err := manager.ListNamespaces(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected no worker schemas after drop-all, found %v", names)
	}
}

func TestEnsureRecreatesDriftedNamespace(t *testing.T) {
	ctx := context.Background()
	manager, gw := newManager(t, ctx)

	if err := manager.EnsureNamespaceReady(ctx, 0); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	// Knock the clone out of shape the way a mid-run canonical migration
	// would: the cloned table no longer matches the canonical columns.
	ns := lifecycle.NamespaceName(0)
	if err := gw.Exec(ctx, fmt.Sprintf(`ALTER TABLE %q.accounts DROP COLUMN tenant_label`, ns)); err != nil {
		t.Fatalf("Failed to alter cloned table: %v", err)
	}

	if err := manager.EnsureNamespaceReady(ctx, 0); err != nil {
		t.Fatalf("Ensure after drift failed: %v", err)
	}

	type row struct {
		Count int64 `db:"count"`
	}
	rows, err := db.Select[row](ctx, gw,
		`SELECT count(*) AS count FROM information_schema.columns
		 WHERE table_schema = $1 AND table_name = 'accounts' AND column_name = 'tenant_label'`, ns)
	if err != nil {
		t.Fatalf("Failed to inspect re-cloned table: %v", err)
	}
	if rows[0].Count != 1 {
		t.Error("Expected ensure to re-clone the drifted table back to canonical shape")
	}
}
