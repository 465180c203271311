package editor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

const owner = "owner@example.com"

func storedInterview(titles ...string) *domain.Interview {
	id := uuid.New()
	tasks := make([]domain.Task, len(titles))
	for i, title := range titles {
		tasks[i] = domain.Task{
			Ref:         domain.Persisted(uuid.New()),
			InterviewID: id,
			Title:       title,
			AIBehavior:  domain.AIBehaviorNeutral,
			Order:       i,
		}
	}
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return domain.RehydrateInterview(id, owner, "Backend Engineer", domain.StatusDraft, tasks, nil, now, now)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	interview := storedInterview("A", "B")
	before := interview.Tasks()

	next, err := Reduce(interview, RemoveTask{Ref: before[0].Ref})
	require.NoError(t, err)

	assert.Equal(t, before, interview.Tasks())
	require.Len(t, next.Tasks(), 1)
	assert.Equal(t, "B", next.Tasks()[0].Title)
	assert.Equal(t, 0, next.Tasks()[0].Order)
}

func TestReduce_AddTaskDefaults(t *testing.T) {
	next, err := Reduce(storedInterview("A"), AddTask{})
	require.NoError(t, err)

	added := next.Tasks()[1]
	assert.True(t, added.Ref.IsPending())
	assert.Equal(t, domain.DefaultTaskTitle, added.Title)
	assert.Equal(t, domain.AIBehaviorNeutral, added.AIBehavior)
	assert.True(t, added.Requirements.Audio)
	assert.Equal(t, 1, added.Order)
	assert.Empty(t, added.Criteria)
}

func TestReduce_TaskOrderStaysContiguous(t *testing.T) {
	interview := storedInterview("A", "B", "C", "D")
	tasks := interview.Tasks()

	next, err := ReduceAll(interview,
		RemoveTask{Ref: tasks[1].Ref},
		AddTask{},
		ReorderTasks{Order: []domain.Ref{tasks[3].Ref, tasks[0].Ref, tasks[2].Ref}},
	)
	// the reorder does not name the added task
	assert.ErrorIs(t, err, domain.ErrInvalidTaskOrder)
	assert.Nil(t, next)

	next, err = ReduceAll(interview,
		RemoveTask{Ref: tasks[1].Ref},
		ReorderTasks{Order: []domain.Ref{tasks[3].Ref, tasks[0].Ref, tasks[2].Ref}},
		AddTask{},
	)
	require.NoError(t, err)
	require.NoError(t, domain.ValidateTaskOrder(next.Tasks()))

	var got []string
	for _, task := range next.Tasks() {
		got = append(got, task.Title)
	}
	assert.Equal(t, []string{"D", "A", "C", domain.DefaultTaskTitle}, got)
}

func TestReduce_UpdateTaskKeepsOrder(t *testing.T) {
	interview := storedInterview("A", "B")
	task := interview.Tasks()[1]
	task.Title = "Live coding"
	task.Order = 0
	task.AIBehavior = ""
	task.Criteria = []domain.Criterion{domain.NewCriterion("Tests", "", domain.CriterionBoolean, domain.ScopeTask)}

	next, err := Reduce(interview, UpdateTask{Task: task})
	require.NoError(t, err)

	updated := next.Tasks()[1]
	assert.Equal(t, "Live coding", updated.Title)
	assert.Equal(t, 1, updated.Order)
	assert.Equal(t, domain.AIBehaviorNeutral, updated.AIBehavior)
	assert.Len(t, updated.Criteria, 1)

	task.Criteria[0].Scope = domain.ScopeGeneral
	_, err = Reduce(interview, UpdateTask{Task: task})
	assert.ErrorIs(t, err, domain.ErrScopeMismatch)
}

func TestReduce_StatusActions(t *testing.T) {
	_, err := Reduce(storedInterview(), PublishInterview{})
	assert.ErrorIs(t, err, domain.ErrNoTasks)

	live, err := Reduce(storedInterview("A"), PublishInterview{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLive, live.Status())

	closed, err := Reduce(live, CloseInterview{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, closed.Status())

	_, err = Reduce(closed, UpdateInterview{Title: "Reopened"})
	assert.ErrorIs(t, err, domain.ErrInterviewClosed)

	_, err = Reduce(closed, PublishInterview{})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestReduce_Rename(t *testing.T) {
	next, err := Reduce(storedInterview(), UpdateInterview{Title: "  Staff Engineer "})
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", next.Title())

	_, err = Reduce(storedInterview(), UpdateInterview{Title: " "})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestReduceAll_NoActionsReturnsCopy(t *testing.T) {
	interview := storedInterview("A")
	next, err := ReduceAll(interview)
	require.NoError(t, err)
	assert.NotSame(t, interview, next)
	assert.Equal(t, interview.Tasks(), next.Tasks())
}
