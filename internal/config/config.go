// Package config loads the environment-provided settings for the isolation
// layer. The database roles and the privileged connection string are
// consumed here, never defined: they belong to the deployment.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

const envPrefix = "WORKERDB"

// ErrMissingAdminURL is returned before any namespace operation is attempted
// when no privileged connection string is configured.
var ErrMissingAdminURL = errors.New("WORKERDB_ADMIN_URL is not set (a connection string with DDL privileges is required)")

// Roles names the database roles granted access to every worker schema.
type Roles struct {
	// Service is the elevated backend role of the system under test.
	Service string
	// App is the role application sessions authenticate as.
	App string
	// ReadOnly is the lowest-privilege public-facing role; it receives
	// read-level grants only.
	ReadOnly string
}

// Config is the effective configuration for one suite run.
type Config struct {
	// AdminURL is the privileged connection string used for all DDL.
	AdminURL string
	// MaxWorkers is the fixed upper bound on worker indexes for the run.
	MaxWorkers int
	// Roles receive grants on every provisioned worker schema.
	Roles Roles
	// LogLevel controls provisioning log verbosity (debug, info, warn, error).
	LogLevel string
}

// DefaultRoles returns the role names used when the environment does not
// override them.
func DefaultRoles() Roles {
	return Roles{
		Service:  "service_role",
		App:      "authenticated",
		ReadOnly: "anon",
	}
}

// Load reads configuration from WORKERDB_* environment variables and
// validates it. Missing credentials fail here, before any database work.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		AdminURL:   v.GetString("admin_url"),
		MaxWorkers: v.GetInt("max_workers"),
		LogLevel:   v.GetString("log_level"),
		Roles: Roles{
			Service:  v.GetString("service_role"),
			App:      v.GetString("app_role"),
			ReadOnly: v.GetString("read_only_role"),
		},
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultRoles()

	v.SetDefault("max_workers", 8)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_role", def.Service)
	v.SetDefault("app_role", def.App)
	v.SetDefault("read_only_role", def.ReadOnly)
}

// Validate rejects configurations that would fail mid-provisioning.
func Validate(cfg Config) error {
	if cfg.AdminURL == "" {
		return ErrMissingAdminURL
	}
	if cfg.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", cfg.MaxWorkers)
	}
	if cfg.Roles.Service == "" || cfg.Roles.App == "" || cfg.Roles.ReadOnly == "" {
		return fmt.Errorf("all three grant roles must be named, got %+v", cfg.Roles)
	}
	return nil
}
