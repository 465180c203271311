package app

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	interviewsDomain "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	interviewsPersistence "github.com/felixgeelhaar/panelist/internal/interviews/infrastructure/persistence"
	resultsDomain "github.com/felixgeelhaar/panelist/internal/results/domain"
	resultsPersistence "github.com/felixgeelhaar/panelist/internal/results/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// InterviewRepository creates an interview repository for the configured driver.
func (f *RepositoryFactory) InterviewRepository() (interviewsDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return interviewsPersistence.NewPostgresInterviewRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return interviewsPersistence.NewSQLiteInterviewRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// CandidateRepository creates a candidate repository for the configured driver.
func (f *RepositoryFactory) CandidateRepository() (resultsDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return resultsPersistence.NewPostgresCandidateRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return resultsPersistence.NewSQLiteCandidateRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return outbox.NewPostgresRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return outbox.NewSQLiteRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// UnitOfWork creates the unit of work for the connection.
func (f *RepositoryFactory) UnitOfWork() (sharedApplication.UnitOfWork, error) {
	return sharedPersistence.NewUnitOfWork(f.conn)
}

func (f *RepositoryFactory) getPostgresPool() (*pgxpool.Pool, error) {
	pgConn, ok := f.conn.(interface{ Pool() *pgxpool.Pool })
	if !ok {
		return nil, fmt.Errorf("postgres connection does not expose Pool()")
	}
	return pgConn.Pool(), nil
}

func (f *RepositoryFactory) getSQLiteDB() (*sql.DB, error) {
	sqliteConn, ok := f.conn.(interface{ DB() *sql.DB })
	if !ok {
		return nil, fmt.Errorf("sqlite connection does not expose DB()")
	}
	return sqliteConn.DB(), nil
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
