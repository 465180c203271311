package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Connection is a driver-specific database handle. Repositories reach the
// native handle through the concrete type (DB for SQLite, Pool for PostgreSQL);
// the interface covers what wiring and migrations need.
type Connection interface {
	// ExecScript runs one or more statements without arguments.
	ExecScript(ctx context.Context, script string) error
	Ping(ctx context.Context) error
	Close() error
	Driver() Driver
}

// Config holds database configuration.
type Config struct {
	// Driver selects the backend. Empty means detect from URL.
	Driver Driver

	// URL is the PostgreSQL connection string.
	URL string

	// SQLitePath is the database file used in local mode.
	// Defaults to ~/.panelist/panelist.db.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool size.
	MaxConns int
}

// Opener creates a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register installs the opener for a driver. Driver packages call this from init.
func Register(driver Driver, opener Opener) {
	openers[driver] = opener
}

// NewConnection opens a connection for the configured driver.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DetectDriver(cfg.URL)
	}
	if !driver.IsValid() {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %s is not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".panelist", "panelist.db")
}

// EnsureDirectory creates the parent directory of path if it does not exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
