package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fluxocertolabs/workerdb"
	"github.com/fluxocertolabs/workerdb/internal/config"
	"github.com/fluxocertolabs/workerdb/internal/db"
	"github.com/fluxocertolabs/workerdb/internal/lifecycle"
)

var (
	workerIndex int
	maxWorkers  int
	mode        string
)

var rootCmd = &cobra.Command{
	Use:   "workerdb",
	Short: "Manage per-worker database isolation for parallel e2e tests",
	Long: `workerdb provisions, clears, and drops the isolated schema each parallel
test worker uses inside the shared PostgreSQL instance. Configuration comes
from WORKERDB_* environment variables (WORKERDB_ADMIN_URL is required).`,
	SilenceUsage: true,
}

var ensureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Provision or clear one worker's isolated slice",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, opts, err := loadOptions()
		if err != nil {
			return err
		}
		if err := validateWorker(cfg); err != nil {
			return err
		}
		return workerdb.EnsureWorkerReady(cmd.Context(), cfg.AdminURL, workerIndex, opts)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete one worker's data, keeping structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, opts, err := loadOptions()
		if err != nil {
			return err
		}
		if err := validateWorker(cfg); err != nil {
			return err
		}
		return workerdb.ClearWorkerData(cmd.Context(), cfg.AdminURL, workerIndex, opts)
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Tear down one worker's isolated slice",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, opts, err := loadOptions()
		if err != nil {
			return err
		}
		if err := validateWorker(cfg); err != nil {
			return err
		}
		return workerdb.DropWorker(cmd.Context(), cfg.AdminURL, workerIndex, opts)
	},
}

var dropAllCmd = &cobra.Command{
	Use:   "drop-all",
	Short: "Tear down every worker's isolated slice",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, opts, err := loadOptions()
		if err != nil {
			return err
		}
		workers := maxWorkers
		if workers == 0 {
			workers = cfg.MaxWorkers
		}
		return workerdb.DropAllWorkers(cmd.Context(), cfg.AdminURL, workers, opts)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List existing worker schemas and their row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, opts, err := loadOptions()
		if err != nil {
			return err
		}
		return printStatus(cmd.Context(), cfg, opts)
	},
}

func init() {
	ensureCmd.Flags().IntVarP(&workerIndex, "worker", "w", 0, "worker index")
	clearCmd.Flags().IntVarP(&workerIndex, "worker", "w", 0, "worker index")
	dropCmd.Flags().IntVarP(&workerIndex, "worker", "w", 0, "worker index")
	dropAllCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "worker count (default: WORKERDB_MAX_WORKERS)")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "schema", "isolation mode: schema or tenant")

	rootCmd.AddCommand(ensureCmd, clearCmd, dropCmd, dropAllCmd, statusCmd)
}

func loadOptions() (config.Config, *workerdb.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "workerdb",
	})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	opts := &workerdb.Options{
		Mode:   workerdb.Mode(mode),
		Roles:  cfg.Roles,
		Logger: logger,
	}
	return cfg, opts, nil
}

func validateWorker(cfg config.Config) error {
	if workerIndex < 0 || workerIndex >= cfg.MaxWorkers {
		return fmt.Errorf("worker index %d outside [0, %d)", workerIndex, cfg.MaxWorkers)
	}
	return nil
}

func printStatus(ctx context.Context, cfg config.Config, opts *workerdb.Options) error {
	client, err := db.NewAdminClient(ctx, cfg.AdminURL)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	manager := lifecycle.NewManager(db.NewGateway(client), cfg.Roles, opts.Logger)

	names, err := manager.ListNamespaces(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no worker schemas present")
		return nil
	}

	for index := 0; index < cfg.MaxWorkers; index++ {
		ns := lifecycle.NamespaceName(index)
		if !contains(names, ns) {
			continue
		}

		counts, err := manager.NamespaceRowCounts(ctx, index)
		if err != nil {
			return err
		}

		var total int64
		for _, c := range counts {
			total += c
		}
		fmt.Printf("%s\t%d rows across %d tables\n", ns, total, len(counts))
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
