package seed

import (
	"strings"
	"testing"

	"github.com/fluxocertolabs/workerdb/internal/worker"
)

func TestEntityName(t *testing.T) {
	wctx := worker.Allocate(3)

	got := EntityName(wctx, "Groceries")
	if got != "W3 Groceries" {
		t.Errorf("EntityName = %q, want %q", got, "W3 Groceries")
	}
}

func TestUniqueEmailIsWorkerTaggedAndUnique(t *testing.T) {
	wctx := worker.Allocate(2)

	first := UniqueEmail(wctx)
	second := UniqueEmail(wctx)

	if !strings.HasPrefix(first, "w2+") {
		t.Errorf("expected worker tag prefix, got %q", first)
	}
	if !strings.HasSuffix(first, "@e2e.fluxocerto.app") {
		t.Errorf("unexpected domain in %q", first)
	}
	if first == second {
		t.Errorf("expected distinct emails, got %q twice", first)
	}
}
