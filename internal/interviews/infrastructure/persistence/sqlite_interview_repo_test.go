package persistence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/interviews/infrastructure/persistence"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
)

func TestSQLiteInterviewRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "interviews.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	db := conn.(*sqlite.Connection).DB()
	runRepositoryContract(t, persistence.NewSQLiteInterviewRepository(db), sharedPersistence.NewSQLiteUnitOfWork(db))
}
