// Package storage selects and opens the saved object backend named by config.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	corecfg "github.com/aevon-lab/metastore/internal/core/config"
	"github.com/aevon-lab/metastore/internal/core/migration"
	"github.com/aevon-lab/metastore/internal/core/repository"
	"github.com/aevon-lab/metastore/internal/core/storage/kv"
	"github.com/aevon-lab/metastore/internal/core/storage/postgres"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/aevon-lab/metastore/internal/migrations"
	_ "github.com/lib/pq" // Register postgres driver
)

// Backend is a saved object repository that can report its health.
type Backend interface {
	repository.Repository
	Ping(ctx context.Context) error
}

var (
	_ Backend = (*kv.Repository)(nil)
	_ Backend = (*postgres.Repository)(nil)
)

// Open builds the shared repository helpers from cfg and opens the configured
// backend. The relational schema is migrated first when auto_migrate is set.
func Open(ctx context.Context, cfg *corecfg.Config) (Backend, error) {
	base, err := NewBase(cfg.Registry, cfg.Types.IncludedHidden, cfg.Storage.MaxConcurrency)
	if err != nil {
		return nil, err
	}

	var backend Backend
	switch cfg.Storage.Kind {
	case corecfg.StorageKV:
		backend, err = kv.Open(kv.Config{
			Path:          cfg.KV.Path,
			InMemory:      cfg.KV.InMemory,
			ApplicationID: cfg.Storage.ApplicationID,
		}, base, cfg.Storage.MaxConcurrency)
	case corecfg.StorageRelational:
		backend, err = openRelational(ctx, cfg, base)
	default:
		err = fmt.Errorf("unsupported storage kind %q", cfg.Storage.Kind)
	}
	if err != nil {
		base.Release()
		return nil, err
	}

	slog.Info("[Storage] Backend ready",
		"kind", cfg.Storage.Kind,
		"application_id", cfg.Storage.ApplicationID,
		"allowed_types", base.AllowedTypes())
	return backend, nil
}

// NewBase wires the type registry, the allow-list and the document migrator
// into the helpers every backend shares.
func NewBase(registry *typeregistry.Registry, includedHidden []string, maxConcurrency int) (*repository.Base, error) {
	allowed, err := typeregistry.AllowedTypes(registry, includedHidden)
	if err != nil {
		return nil, err
	}
	migrator, err := migration.NewVersioned(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build document migrator: %w", err)
	}
	return repository.NewBase(repository.Options{
		Registry:       registry,
		Migrator:       migrator,
		AllowedTypes:   allowed,
		MaxConcurrency: maxConcurrency,
	})
}

func openRelational(ctx context.Context, cfg *corecfg.Config, base *repository.Base) (*postgres.Repository, error) {
	dsn := cfg.Relational.ConnectionString()

	if err := migrate(ctx, dsn, cfg.Relational.AutoMigrate); err != nil {
		return nil, err
	}

	return postgres.NewRepository(postgres.Config{
		DSN:             dsn,
		ApplicationID:   cfg.Storage.ApplicationID,
		MaxOpenConns:    cfg.Relational.MaxOpenConns,
		MaxIdleConns:    cfg.Relational.MaxIdleConns,
		ConnMaxIdleTime: cfg.Relational.IdleTimeoutDuration(),
		ConnMaxLifetime: cfg.Relational.ConnMaxLifetimeDuration(),
	}, base)
}

// migrate runs the embedded schema migrations over a short-lived connection.
func migrate(ctx context.Context, dsn string, autoMigrate bool) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres database: %w", err)
	}
	if err := migrations.RunMigrations(db, autoMigrate); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}
