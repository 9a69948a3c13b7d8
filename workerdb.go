// Package workerdb isolates parallel end-to-end test workers from each other
// inside one shared PostgreSQL instance.
//
// Each worker owns a dedicated schema holding a structural clone of every
// tracked application table, with foreign keys re-pointed so referential
// integrity resolves inside the worker's own schema. Identity records stay
// shared: cloned tables keep referencing the canonical auth tables directly.
//
// # Quick Start
//
// Per-suite setup for one worker:
//
//	err := workerdb.EnsureWorkerReady(
//		context.Background(),
//		os.Getenv("WORKERDB_ADMIN_URL"),
//		workerIndex,
//		nil,
//	)
//
// Full-suite teardown:
//
//	err := workerdb.DropAllWorkers(ctx, adminURL, maxWorkers, nil)
//
// # Worker identity
//
// Allocate derives a worker's schema name and data-tagging prefixes from its
// index alone. It performs no I/O and needs no coordination, so any process
// can call it at any time and get the same answer:
//
//	wctx := workerdb.Allocate(3)
//	// wctx.Schema == "test_worker_3", wctx.DataPrefix == "W3"
//
// # Isolation modes
//
// ModeSchema (the default) gives each worker a cloned schema. ModeTenant
// keeps all workers in the canonical tables and partitions row visibility
// with a row-level-security policy on a tenant_label column. Both are
// idempotent and safe under concurrent invocation from multiple worker
// processes; a retried setup converges instead of corrupting state.
package workerdb

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/fluxocertolabs/workerdb/internal/config"
	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/isolation"
	"github.com/fluxocertolabs/workerdb/internal/lifecycle"
	"github.com/fluxocertolabs/workerdb/internal/worker"
)

// Mode selects the isolation strategy.
type Mode string

const (
	// ModeSchema clones every tracked table into a per-worker schema.
	ModeSchema Mode = "schema"
	// ModeTenant tags rows with a per-worker tenant label enforced by
	// row-level-security policy on the canonical tables.
	ModeTenant Mode = "tenant"
)

// WorkerContext is the deterministic identity of one test worker.
type WorkerContext = worker.Context

// Options configures the isolation layer.
//
// All fields are optional. If not specified:
//   - Mode: defaults to ModeSchema
//   - Roles: defaults to the deployment's standard role names
//   - Logger: defaults to the charmbracelet/log package default
type Options struct {
	// Mode selects schema cloning or tenant row tagging.
	Mode Mode

	// Roles are the database roles granted access to worker schemas.
	Roles config.Roles

	// Logger receives provisioning progress.
	Logger *log.Logger
}

// Allocate returns the worker identity for an index. Pure: no I/O, no shared
// state, identical results in every process.
func Allocate(workerIndex int) WorkerContext {
	return worker.Allocate(workerIndex)
}

// EnsureWorkerReady makes the worker's isolated slice ready for a suite run:
// it provisions the worker schema when absent, re-clones it when its shape
// has drifted from the canonical tables, and clears its data otherwise.
// Called once per suite boundary; calling it twice is equivalent to once.
func EnsureWorkerReady(ctx context.Context, adminURL string, workerIndex int, opts *Options) error {
	if workerIndex < 0 {
		return fmt.Errorf("worker index must be non-negative, got %d", workerIndex)
	}
	return withStrategy(ctx, adminURL, opts, func(s isolation.Strategy) error {
		return s.Prepare(ctx, workerIndex)
	})
}

// ClearWorkerData removes the worker's rows between tests, leaving structure
// intact.
func ClearWorkerData(ctx context.Context, adminURL string, workerIndex int, opts *Options) error {
	if workerIndex < 0 {
		return fmt.Errorf("worker index must be non-negative, got %d", workerIndex)
	}
	return withStrategy(ctx, adminURL, opts, func(s isolation.Strategy) error {
		return s.Reset(ctx, workerIndex)
	})
}

// DropWorker tears down everything the worker owns. Suite teardown and
// cleanup utilities only, never per-test setup.
func DropWorker(ctx context.Context, adminURL string, workerIndex int, opts *Options) error {
	if workerIndex < 0 {
		return fmt.Errorf("worker index must be non-negative, got %d", workerIndex)
	}
	return withStrategy(ctx, adminURL, opts, func(s isolation.Strategy) error {
		return s.Teardown(ctx, workerIndex)
	})
}

// DropAllWorkers tears down workers 0 through maxWorkers-1.
func DropAllWorkers(ctx context.Context, adminURL string, maxWorkers int, opts *Options) error {
	if maxWorkers <= 0 {
		return fmt.Errorf("maxWorkers must be positive, got %d", maxWorkers)
	}
	return withStrategy(ctx, adminURL, opts, func(s isolation.Strategy) error {
		for index := 0; index < maxWorkers; index++ {
			if err := s.Teardown(ctx, index); err != nil {
				return err
			}
		}
		return nil
	})
}

// withStrategy opens the privileged connection, builds the configured
// strategy, runs fn, and closes the connection. Credential problems surface
// here, before any namespace operation is attempted.
func withStrategy(ctx context.Context, adminURL string, opts *Options, fn func(isolation.Strategy) error) error {
	if adminURL == "" {
		return config.ErrMissingAdminURL
	}
	if opts == nil {
		opts = &Options{}
	}

	roles := opts.Roles
	if roles == (config.Roles{}) {
		roles = config.DefaultRoles()
	}

	client, err := db.NewAdminClient(ctx, adminURL)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	gw := db.NewGateway(client)

	var strategy isolation.Strategy
	switch opts.Mode {
	case ModeTenant:
		strategy = isolation.NewTenantStrategy(gw, opts.Logger)
	case ModeSchema, "":
		strategy = isolation.NewSchemaStrategy(lifecycle.NewManager(gw, roles, opts.Logger))
	default:
		return fmt.Errorf("unknown isolation mode: %s", opts.Mode)
	}

	return fn(strategy)
}
