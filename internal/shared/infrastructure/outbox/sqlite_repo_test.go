package outbox

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "outbox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	return conn.(*sqlite.Connection).DB()
}

func TestSQLiteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	repo := NewSQLiteRepository(db)

	first, err := NewMessage(newTitleChanged(newID(), "one"))
	require.NoError(t, err)
	second, err := NewMessage(newTitleChanged(newID(), "two"))
	require.NoError(t, err)

	require.NoError(t, repo.SaveBatch(ctx, []*Message{first, second}))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID)
	assert.JSONEq(t, string(first.Payload), string(pending[0].Payload))

	require.NoError(t, repo.MarkPublished(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "timeout", time.Now().Add(time.Hour)))

	pending, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, repo.MarkDead(ctx, second.ID, "gave up"))

	// published today, so nothing is old enough to delete
	deleted, err := repo.DeleteOld(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	repo.now = func() time.Time { return time.Now().AddDate(0, 0, 30) }
	deleted, err = repo.DeleteOld(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSQLiteRepository_SaveJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	repo := NewSQLiteRepository(db)
	uow := sharedPersistence.NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)

	msg, err := NewMessage(newTitleChanged(newID(), "rolled back"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(txCtx, msg))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
