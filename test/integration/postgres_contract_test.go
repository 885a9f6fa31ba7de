//go:build integration

package integration

import (
	"testing"

	"github.com/aevon-lab/metastore/internal/core/repository"
	"github.com/aevon-lab/metastore/internal/core/repository/repositorytest"
	"github.com/aevon-lab/metastore/internal/core/storage/postgres"
	"github.com/aevon-lab/metastore/internal/migrations"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_Contract(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, migrations.RunMigrations(db, true))

	repositorytest.Run(t, func(t *testing.T, base *repository.Base) repository.Repository {
		require.NoError(t, resetDatabase(t, db))

		repo, err := postgres.NewRepository(postgres.Config{
			DSN:           testDSN(),
			ApplicationID: "contract",
			MaxOpenConns:  4,
			MaxIdleConns:  4,
		}, base)
		require.NoError(t, err)
		return repo
	})
}

func TestMigrations_RollbackAndReapply(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, migrations.RunMigrations(db, true))

	require.NoError(t, migrations.Rollback(db))
	var exists bool
	require.NoError(t, db.QueryRow(`SELECT to_regclass('saved_objects') IS NOT NULL`).Scan(&exists))
	require.False(t, exists)

	require.NoError(t, migrations.RunMigrations(db, true))
	require.NoError(t, db.QueryRow(`SELECT to_regclass('saved_objects') IS NOT NULL`).Scan(&exists))
	require.True(t, exists)
}
