package results

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/app"
	interviewCommands "github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	mcpinternal "github.com/felixgeelhaar/panelist/internal/mcp"
	"github.com/felixgeelhaar/panelist/internal/results/application/queries"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
	"github.com/felixgeelhaar/panelist/pkg/config"
)

const owner = "owner@example.com"

func setupApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "results.db"),
		CacheTTL:       time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	cliApp := mcpinternal.NewCLIApp(container, owner)
	cli.SetApp(cliApp)
	t.Cleanup(func() { cli.SetApp(nil) })
	return cliApp
}

// liveInterview publishes an interview with a numeric general criterion and
// a boolean task criterion.
func liveInterview(t *testing.T, a *cli.App) (*interviews.Interview, interviews.Criterion, interviews.Criterion) {
	t.Helper()
	ctx := context.Background()

	created, err := a.CreateInterviewHandler.Handle(ctx, interviewCommands.CreateInterviewCommand{
		OwnerEmail: owner,
		Title:      "Backend Engineer",
	})
	require.NoError(t, err)
	id := created.ID()

	_, err = a.Editor.Open(ctx, id, owner)
	require.NoError(t, err)
	defer func() { _ = a.Editor.Discard(id, owner) }()

	edited, err := a.Editor.Dispatch(id, owner, editor.AddTask{})
	require.NoError(t, err)
	task := edited.Tasks()[0]
	task.Criteria = []interviews.Criterion{
		interviews.NewCriterion("Hire", "", interviews.CriterionBoolean, interviews.ScopeTask),
	}
	_, err = a.Editor.Dispatch(id, owner,
		editor.UpdateTask{Task: task},
		editor.SetGeneralCriteria{Criteria: []interviews.Criterion{
			interviews.NewCriterion("Communication", "", interviews.CriterionNumeric, interviews.ScopeGeneral),
		}},
	)
	require.NoError(t, err)

	result, err := a.Editor.Publish(ctx, id, owner)
	require.NoError(t, err)

	published := result.Interview
	return published, published.GeneralCriteria()[0], published.Tasks()[0].Criteria[0]
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(Cmd)
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(io.Discard)
	Cmd.SetArgs(args)
	err := Cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func candidateID(t *testing.T, a *cli.App, interviewID uuid.UUID, email string) string {
	t.Helper()
	results, err := a.ListResultsHandler.Handle(context.Background(), queries.ListResultsQuery{
		InterviewID: interviewID,
		OwnerEmail:  owner,
	})
	require.NoError(t, err)
	for _, c := range results.Candidates {
		if c.Email == email {
			return c.ID.String()
		}
	}
	t.Fatalf("candidate %s not found", email)
	return ""
}

func TestResultsCommands_Flow(t *testing.T) {
	a := setupApp(t)
	interview, communication, hire := liveInterview(t, a)
	id := interview.ID().String()

	out := mustRun(t, "invite", id, "--name", "Ada Lovelace", "--email", "Ada@Example.com")
	assert.Contains(t, out, "Candidate invited:")
	assert.Contains(t, out, "email: ada@example.com")

	_, err := run(t, "invite", id, "--name", "Ada again", "--email", "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrDuplicateCandidate)

	cand := candidateID(t, a, interview.ID(), "ada@example.com")

	out = mustRun(t, "complete", id, cand, "--at", "2026-03-01T10:00:00Z")
	assert.Contains(t, out, "at 2026-03-01T10:00:00Z")

	_, err = run(t, "complete", id, cand)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	out = mustRun(t, "score", id, cand, communication.Ref.String(), "4")
	assert.Contains(t, out, "(1 scored)")
	out = mustRun(t, "score", id, cand, hire.Ref.String(), "pass")
	assert.Contains(t, out, "(2 scored)")

	_, err = run(t, "score", id, cand, communication.Ref.String(), "7")
	assert.ErrorIs(t, err, domain.ErrScoreOutOfRange)

	_, err = run(t, "score", id, cand, uuid.NewString(), "1")
	assert.ErrorIs(t, err, domain.ErrCriterionNotInInterview)

	out = mustRun(t, "note", id, cand, "Strong on trade-offs", "--column", "Communication")
	assert.Contains(t, out, "(1 notes)")

	out = mustRun(t, "show", id)
	assert.Contains(t, out, "Backend Engineer [live]")
	assert.Contains(t, out, "1 invited, 1 completed, 1 graded")
	assert.Contains(t, out, "Ada Lovelace <ada@example.com> (completed)")
	assert.Contains(t, out, "Communication: 4/5")
	assert.Contains(t, out, "Hire: pass")
	assert.Contains(t, out, "note [Communication] by "+owner+": Strong on trade-offs")
}

func TestResultsCommands_InviteRequiresLiveInterview(t *testing.T) {
	a := setupApp(t)

	draft, err := a.CreateInterviewHandler.Handle(context.Background(), interviewCommands.CreateInterviewCommand{
		OwnerEmail: owner,
		Title:      "Draft",
	})
	require.NoError(t, err)

	_, err = run(t, "invite", draft.ID().String(), "--email", "grace@example.com")
	assert.ErrorIs(t, err, domain.ErrInterviewNotLive)

	out := mustRun(t, "show", draft.ID().String())
	assert.Contains(t, out, "No candidates.")
}

func TestResultsCommands_InvalidArguments(t *testing.T) {
	setupApp(t)

	_, err := run(t, "invite", uuid.NewString())
	assert.Error(t, err, "email is required")

	_, err = run(t, "complete", "nope", uuid.NewString())
	assert.Error(t, err)

	_, err = run(t, "complete", uuid.NewString(), uuid.NewString(), "--at", "yesterday")
	assert.Error(t, err)

	_, err = run(t, "score", uuid.NewString(), uuid.NewString(), uuid.NewString(), "great")
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"pass", 1, false},
		{"YES", 1, false},
		{"true", 1, false},
		{"fail", 0, false},
		{"no", 0, false},
		{"3.5", 3.5, false},
		{"0", 0, false},
		{"excellent", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parseScore(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "pass", formatScore(queries.ScoreDTO{Type: "boolean", Value: 1}))
	assert.Equal(t, "fail", formatScore(queries.ScoreDTO{Type: "boolean", Value: 0}))
	assert.Equal(t, "3.5/5", formatScore(queries.ScoreDTO{Type: "numeric", Value: 3.5}))
}
