package persistence

import (
	"fmt"

	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/sqlite"
)

// NewUnitOfWork returns the unit of work matching the connection's driver.
func NewUnitOfWork(conn database.Connection) (sharedApplication.UnitOfWork, error) {
	switch c := conn.(type) {
	case *sqlite.Connection:
		return NewSQLiteUnitOfWork(c.DB()), nil
	case *postgres.Connection:
		return NewPostgresUnitOfWork(c.Pool()), nil
	default:
		return nil, fmt.Errorf("unsupported connection type %T", conn)
	}
}

var (
	_ sharedApplication.UnitOfWork = (*SQLiteUnitOfWork)(nil)
	_ sharedApplication.UnitOfWork = (*PostgresUnitOfWork)(nil)
)
