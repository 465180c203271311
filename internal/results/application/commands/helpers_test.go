package commands_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	interviewCommands "github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	interviewPersistence "github.com/felixgeelhaar/panelist/internal/interviews/infrastructure/persistence"
	"github.com/felixgeelhaar/panelist/internal/results/application/commands"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
	"github.com/felixgeelhaar/panelist/internal/results/infrastructure/persistence"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
)

const owner = "owner@example.com"

type env struct {
	interviews  interviews.Repository
	repo        domain.Repository
	outbox      *outbox.SQLiteRepository
	uow         *sharedPersistence.SQLiteUnitOfWork
	invalidator *recordingInvalidator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "results.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	db := conn.(*sqlite.Connection).DB()
	return &env{
		interviews:  interviewPersistence.NewSQLiteInterviewRepository(db),
		repo:        persistence.NewSQLiteCandidateRepository(db),
		outbox:      outbox.NewSQLiteRepository(db),
		uow:         sharedPersistence.NewSQLiteUnitOfWork(db),
		invalidator: &recordingInvalidator{},
	}
}

func (e *env) deps() commands.Deps {
	return commands.Deps{
		Interviews:  e.interviews,
		Repo:        e.repo,
		Outbox:      e.outbox,
		UnitOfWork:  e.uow,
		Invalidator: e.invalidator,
	}
}

// interview creates an interview with one task criterion, a numeric and a
// text general criterion, in the given status.
func (e *env) interview(t *testing.T, status interviews.Status) *interviews.Interview {
	t.Helper()
	ctx := context.Background()

	created, err := interviewCommands.NewCreateInterviewHandler(e.interviews, e.outbox, e.uow, nil, nil).
		Handle(ctx, interviewCommands.CreateInterviewCommand{OwnerEmail: owner, Title: "Backend Engineer"})
	require.NoError(t, err)

	save := interviewCommands.NewSaveInterviewHandler(e.interviews, e.outbox, e.uow, nil)
	result, err := interviewCommands.NewSubmitInterviewHandler(e.interviews, save).
		Handle(ctx, interviewCommands.SubmitInterviewCommand{
			InterviewID: created.ID(),
			OwnerEmail:  owner,
			Draft: interviewCommands.Draft{
				Title:  "Backend Engineer",
				Status: status.String(),
				Tasks: []interviewCommands.DraftTask{{
					Title:    "System design",
					Criteria: []interviewCommands.DraftCriterion{{Name: "Hire", Type: "boolean"}},
				}},
				GeneralCriteria: []interviewCommands.DraftCriterion{
					{Name: "Communication", Type: "numeric"},
					{Name: "Summary", Type: "text"},
				},
			},
		})
	require.NoError(t, err)
	return result.Interview
}

func (e *env) invite(t *testing.T, interview *interviews.Interview, email string) *domain.Candidate {
	t.Helper()
	c, err := commands.NewInviteCandidateHandler(e.deps()).Handle(context.Background(), commands.InviteCandidateCommand{
		InterviewID: interview.ID(),
		OwnerEmail:  owner,
		Name:        "Ada Lovelace",
		Email:       email,
	})
	require.NoError(t, err)
	return c
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

func criterionID(t *testing.T, c interviews.Criterion) uuid.UUID {
	t.Helper()
	id, ok := c.Ref.ID()
	require.True(t, ok)
	return id
}

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
