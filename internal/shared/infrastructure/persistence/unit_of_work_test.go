package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/sqlite"
)

type otherConnection struct{ database.Connection }

func TestNewUnitOfWork(t *testing.T) {
	conn, err := sqlite.NewConnection(context.Background(), database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "uow.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	uow, err := NewUnitOfWork(conn)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteUnitOfWork{}, uow)

	_, err = NewUnitOfWork(otherConnection{})
	assert.Error(t, err)
}
