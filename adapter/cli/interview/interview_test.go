package interview

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/app"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	mcpinternal "github.com/felixgeelhaar/panelist/internal/mcp"
	"github.com/felixgeelhaar/panelist/pkg/config"
)

const owner = "owner@example.com"

func setupApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "cli.db"),
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

// resetFlags restores every flag under cmd to its default so that package
// level flag state does not leak between runs.
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

func createdID(t *testing.T, out string) string {
	t.Helper()
	first, _, _ := strings.Cut(out, "\n")
	fields := strings.Fields(first)
	require.NotEmpty(t, fields)
	id := fields[len(fields)-1]
	_, err := uuid.Parse(id)
	require.NoError(t, err, out)
	return id
}

func load(t *testing.T, a *cli.App, id string) *domain.Interview {
	t.Helper()
	found, err := a.GetInterviewHandler.Handle(context.Background(), queries.GetInterviewQuery{
		InterviewID: uuid.MustParse(id),
		OwnerEmail:  owner,
	})
	require.NoError(t, err)
	return found
}

func TestInterviewCommands_AuthoringFlow(t *testing.T) {
	a := setupApp(t)

	out := mustRun(t, "create", "Backend Engineer")
	assert.Contains(t, out, "title: Backend Engineer")
	id := createdID(t, out)

	out = mustRun(t, "task", "add", id, "--title", "System design", "--duration", "45", "--screen-share")
	assert.Contains(t, out, "tasks: 1 (upserted 1, deleted 0)")

	tasks := load(t, a, id).Tasks()
	require.Len(t, tasks, 1)
	design := tasks[0]
	assert.Equal(t, "System design", design.Title)
	assert.Equal(t, 45, design.DurationMinutes)
	assert.True(t, design.Requirements.ScreenShare)
	assert.True(t, design.Requirements.Audio)
	assert.Equal(t, domain.AIBehaviorNeutral, design.AIBehavior)

	mustRun(t, "criteria", "add", id, "--name", "Communication")
	mustRun(t, "criteria", "add", id, "--task", design.Ref.String(), "--name", "Hire", "--type", "boolean")

	out = mustRun(t, "show", id)
	assert.Contains(t, out, "Backend Engineer [draft]")
	assert.Contains(t, out, "1. System design (45 min, neutral)")
	assert.Contains(t, out, "- Communication (numeric)")
	assert.Contains(t, out, "- Hire (boolean)")

	// Only the flags given are applied.
	mustRun(t, "task", "update", id, design.Ref.String(), "--prompt", "Design a rate limiter")
	updated, ok := load(t, a, id).Task(design.Ref)
	require.True(t, ok)
	assert.Equal(t, "Design a rate limiter", updated.Prompt)
	assert.Equal(t, "System design", updated.Title)
	assert.Len(t, updated.Criteria, 1)

	mustRun(t, "task", "add", id, "--title", "Pairing")
	tasks = load(t, a, id).Tasks()
	require.Len(t, tasks, 2)
	pairing := tasks[1]

	mustRun(t, "task", "move", id, pairing.Ref.String(), "1")
	tasks = load(t, a, id).Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "Pairing", tasks[0].Title)
	assert.Equal(t, "System design", tasks[1].Title)

	mustRun(t, "rename", id, "Senior Backend Engineer")
	assert.Equal(t, "Senior Backend Engineer", load(t, a, id).Title())

	out = mustRun(t, "publish", id)
	assert.Contains(t, out, "status: live")

	out = mustRun(t, "list", "--status", "live")
	assert.Contains(t, out, "Senior Backend Engineer")
	out = mustRun(t, "list", "--status", "draft")
	assert.Contains(t, out, "No interviews found.")

	out = mustRun(t, "close", id)
	assert.Contains(t, out, "status: closed")

	_, err := run(t, "publish", id)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestInterviewCommands_PublishRequiresTasks(t *testing.T) {
	setupApp(t)

	id := createdID(t, mustRun(t, "create"))

	_, err := run(t, "publish", id)
	assert.ErrorIs(t, err, domain.ErrNoTasks)
}

func TestInterviewCommands_RemoveTaskAndCriterion(t *testing.T) {
	a := setupApp(t)

	id := createdID(t, mustRun(t, "create", "Support"))
	mustRun(t, "task", "add", id, "--title", "Triage")
	mustRun(t, "criteria", "add", id, "--name", "Empathy")

	interview := load(t, a, id)
	require.Len(t, interview.GeneralCriteria(), 1)
	criterion := interview.GeneralCriteria()[0]

	out := mustRun(t, "criteria", "remove", id, criterion.Ref.String())
	assert.Contains(t, out, "criteria: 0 (upserted 0, deleted 1)")

	_, err := run(t, "criteria", "rm", id, criterion.Ref.String())
	assert.ErrorIs(t, err, errCriterionNotFound)

	task := interview.Tasks()[0]
	out = mustRun(t, "task", "rm", id, task.Ref.String())
	assert.Contains(t, out, "tasks: 0 (upserted 0, deleted 1)")

	_, err = run(t, "task", "update", id, task.Ref.String(), "--title", "Gone")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestInterviewCommands_ImportExport(t *testing.T) {
	a := setupApp(t)

	id := createdID(t, mustRun(t, "create", "Data Engineer"))
	mustRun(t, "task", "add", id, "--title", "SQL", "--duration", "30")
	mustRun(t, "criteria", "add", id, "--name", "Accuracy")
	mustRun(t, "publish", id)

	out := mustRun(t, "export", id)
	assert.Contains(t, out, "Data Engineer")
	assert.Contains(t, out, "SQL")

	path := filepath.Join(t.TempDir(), "template.yaml")
	mustRun(t, "export", id, "-o", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))

	out = mustRun(t, "import", path)
	assert.Contains(t, out, "Interview imported")
	assert.Contains(t, out, "status: draft")

	imported := load(t, a, createdID(t, out))
	assert.Equal(t, "Data Engineer", imported.Title())
	require.Len(t, imported.Tasks(), 1)
	assert.Equal(t, 30, imported.Tasks()[0].DurationMinutes)
	assert.Len(t, imported.GeneralCriteria(), 1)

	Cmd.SetIn(strings.NewReader("title: [unclosed"))
	t.Cleanup(func() { Cmd.SetIn(nil) })
	_, err = run(t, "import", "-")
	assert.Error(t, err)
}

func TestInterviewCommands_Delete(t *testing.T) {
	setupApp(t)

	id := createdID(t, mustRun(t, "create", "Short lived"))

	out := mustRun(t, "delete", id)
	assert.Contains(t, out, id)

	_, err := run(t, "show", id)
	assert.ErrorIs(t, err, domain.ErrInterviewNotFound)
}

func TestInterviewCommands_InvalidIDs(t *testing.T) {
	setupApp(t)

	_, err := run(t, "show", "not-a-uuid")
	assert.Error(t, err)

	_, err = run(t, "task", "move", uuid.NewString(), uuid.NewString(), "first")
	assert.Error(t, err)
}

func TestInterviewCommands_RequireApp(t *testing.T) {
	cli.SetApp(nil)

	_, err := run(t, "list")
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestMoveRef(t *testing.T) {
	a, b, c := domain.Pending("a"), domain.Pending("b"), domain.Pending("c")
	tasks := []domain.Task{{Ref: a}, {Ref: b}, {Ref: c}}

	tests := []struct {
		name  string
		ref   domain.Ref
		index int
		want  []domain.Ref
	}{
		{"to front", c, 0, []domain.Ref{c, a, b}},
		{"to middle", a, 1, []domain.Ref{b, a, c}},
		{"past end clamps", a, 10, []domain.Ref{b, c, a}},
		{"negative clamps", b, -3, []domain.Ref{b, a, c}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order, err := moveRef(tasks, tc.ref, tc.index)
			require.NoError(t, err)
			assert.Equal(t, tc.want, order)
		})
	}

	_, err := moveRef(tasks, domain.Pending("missing"), 0)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestRemoveCriterion(t *testing.T) {
	interview, err := domain.NewInterview(owner, "Design")
	require.NoError(t, err)

	general := domain.NewCriterion("Clarity", "", domain.CriterionNumeric, domain.ScopeGeneral)
	require.NoError(t, interview.SetGeneralCriteria([]domain.Criterion{general}))

	task := interview.AddTask()
	scoped := domain.NewCriterion("Hire", "", domain.CriterionBoolean, domain.ScopeTask)
	task.Criteria = []domain.Criterion{scoped}
	require.NoError(t, interview.UpdateTask(task))

	action, err := removeCriterion(interview, general.Ref)
	require.NoError(t, err)
	assert.Empty(t, action.(editor.SetGeneralCriteria).Criteria)

	action, err = removeCriterion(interview, scoped.Ref)
	require.NoError(t, err)
	assert.Empty(t, action.(editor.UpdateTask).Task.Criteria)

	_, err = removeCriterion(interview, domain.Pending("missing"))
	assert.ErrorIs(t, err, errCriterionNotFound)
}
