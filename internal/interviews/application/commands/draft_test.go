package commands_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

func TestDraft_Apply(t *testing.T) {
	original := domain.RehydrateInterview(
		uuid.New(), owner, "Backend Engineer", domain.StatusDraft,
		nil, nil, fixedTime, fixedTime,
	)

	draft := commands.Draft{
		Title: "  ",
		Tasks: []commands.DraftTask{
			{Title: "Warmup", Criteria: []commands.DraftCriterion{{Name: "Clarity", Type: "Numeric"}}},
			{ID: uuid.NewString(), Prompt: "Design a cache", AIBehavior: "challenging", DurationMinutes: 30},
		},
		GeneralCriteria: []commands.DraftCriterion{{ID: "key-abc", Name: "Culture", Type: "text"}},
	}

	edited, err := draft.Apply(original)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", edited.Title(), "blank title keeps the original")
	assert.Equal(t, domain.StatusDraft, edited.Status())

	tasks := edited.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, 0, tasks[0].Order)
	assert.Equal(t, 1, tasks[1].Order)
	assert.Equal(t, domain.DefaultTaskTitle, tasks[1].Title)
	assert.Equal(t, domain.AIBehaviorNeutral, tasks[0].AIBehavior)
	assert.Equal(t, domain.AIBehavior("challenging"), tasks[1].AIBehavior)
	assert.True(t, tasks[1].Ref.IsPending(), "foreign persisted ids become pending")
	assert.Equal(t, domain.ScopeTask, tasks[0].Criteria[0].Scope)
	assert.Equal(t, domain.CriterionNumeric, tasks[0].Criteria[0].Type)

	general := edited.GeneralCriteria()
	require.Len(t, general, 1)
	assert.Equal(t, domain.Pending("key-abc"), general[0].Ref)
	assert.Equal(t, domain.ScopeGeneral, general[0].Scope)
}

func TestDraft_ApplyKeepsKnownIDs(t *testing.T) {
	e := newEnv(t)
	original := seedAB(t, e)

	draft := commands.DraftFromInterview(original)
	draft.Tasks[0], draft.Tasks[1] = draft.Tasks[1], draft.Tasks[0]

	edited, err := draft.Apply(original)
	require.NoError(t, err)

	tasks := edited.Tasks()
	assert.Equal(t, original.Tasks()[1].Ref, tasks[0].Ref)
	assert.Equal(t, original.Tasks()[0].Ref, tasks[1].Ref)
	assert.Equal(t, original.Tasks()[1].Criteria, tasks[0].Criteria)
	assert.Equal(t, original.GeneralCriteria(), edited.GeneralCriteria())
}

func TestDraft_ApplyRejectsBadValues(t *testing.T) {
	original := domain.RehydrateInterview(uuid.New(), owner, "X", domain.StatusDraft, nil, nil, fixedTime, fixedTime)

	_, err := commands.Draft{Status: "archived"}.Apply(original)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = commands.Draft{GeneralCriteria: []commands.DraftCriterion{{Name: "x", Type: "stars"}}}.Apply(original)
	assert.ErrorIs(t, err, domain.ErrInvalidCriterionType)
}

func TestSubmitInterview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	original := seedAB(t, e)
	handler := commands.NewSubmitInterviewHandler(e.repo, e.saveHandler(nil))

	draft := commands.DraftFromInterview(original)
	draft.Tasks = append(draft.Tasks[1:], commands.DraftTask{ID: "key-new", Title: "C"})
	draft.Status = "live"

	result, err := handler.Handle(ctx, commands.SubmitInterviewCommand{
		InterviewID: original.ID(),
		OwnerEmail:  "  OWNER@example.com ",
		Draft:       draft,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLive, result.Interview.Status())
	assert.Equal(t, []string{"B", "C"}, titles(result.Interview.Tasks()))

	_, err = handler.Handle(ctx, commands.SubmitInterviewCommand{InterviewID: uuid.New(), OwnerEmail: owner})
	assert.ErrorIs(t, err, domain.ErrInterviewNotFound)
}
