package commands_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/interviews/infrastructure/persistence"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
)

const owner = "owner@example.com"

type env struct {
	db     *sql.DB
	repo   domain.Repository
	outbox *outbox.SQLiteRepository
	uow    *sharedPersistence.SQLiteUnitOfWork
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "commands.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	db := conn.(*sqlite.Connection).DB()
	return &env{
		db:     db,
		repo:   persistence.NewSQLiteInterviewRepository(db),
		outbox: outbox.NewSQLiteRepository(db),
		uow:    sharedPersistence.NewSQLiteUnitOfWork(db),
	}
}

func (e *env) saveHandler(repo domain.Repository) *commands.SaveInterviewHandler {
	if repo == nil {
		repo = e.repo
	}
	return commands.NewSaveInterviewHandler(repo, e.outbox, e.uow, nil)
}

func (e *env) createInterview(t *testing.T, title string) *domain.Interview {
	t.Helper()
	interview, err := commands.NewCreateInterviewHandler(e.repo, e.outbox, e.uow, nil, nil).
		Handle(context.Background(), commands.CreateInterviewCommand{OwnerEmail: owner, Title: title})
	require.NoError(t, err)
	return interview
}

func (e *env) load(t *testing.T, interview *domain.Interview) *domain.Interview {
	t.Helper()
	found, err := e.repo.FindByID(context.Background(), interview.ID(), owner)
	require.NoError(t, err)
	return found
}

func (e *env) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func (e *env) routingKeys(t *testing.T) []string {
	t.Helper()
	msgs, err := e.outbox.GetUnpublished(context.Background(), 100)
	require.NoError(t, err)
	keys := make([]string, 0, len(msgs))
	for _, m := range msgs {
		keys = append(keys, m.RoutingKey)
	}
	return keys
}

// failingRepository fails one store call.
type failingRepository struct {
	domain.Repository
	failOn string
	err    error
}

func (r *failingRepository) UpsertTasks(ctx context.Context, rows []domain.TaskRow) ([]domain.TaskRow, error) {
	if r.failOn == "upsert_tasks" {
		return nil, r.err
	}
	return r.Repository.UpsertTasks(ctx, rows)
}

func (r *failingRepository) UpsertCriteria(ctx context.Context, rows []domain.CriterionRow) ([]domain.CriterionRow, error) {
	if r.failOn == "upsert_criteria" {
		return nil, r.err
	}
	return r.Repository.UpsertCriteria(ctx, rows)
}

// recordingInvalidator records listing invalidations.
type recordingInvalidator struct {
	mu     sync.Mutex
	owners []string
}

func (r *recordingInvalidator) InvalidateListing(_ context.Context, ownerEmail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = append(r.owners, ownerEmail)
	return nil
}

func (r *recordingInvalidator) Owners() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.owners...)
}
