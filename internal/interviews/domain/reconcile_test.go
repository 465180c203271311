package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoRows simulates a store that assigns ids to new rows. Client keys are
// echoed only when echoKeys is set.
func echoRows(rows []TaskRow, echoKeys bool) []TaskRow {
	out := make([]TaskRow, len(rows))
	for i, row := range rows {
		out[i] = row
		if row.IsNew() {
			out[i].ID = uuid.New()
		}
		if !echoKeys {
			out[i].ClientKey = ""
		}
	}
	return out
}

func TestReconcileTasks_Scenario(t *testing.T) {
	interviewID := uuid.New()
	a := persistedTask(interviewID, "A", 0)
	b := persistedTask(interviewID, "B", 1)
	editedB := b.Clone()
	editedB.Order = 0
	c := NewTask(interviewID, 1)
	c.Title = "C"
	c.Criteria = []Criterion{NewCriterion("Depth", "", CriterionNumeric, ScopeTask)}

	diff := DiffTasks(interviewID, []Task{a, b}, []Task{editedB, c})
	persisted := echoRows(diff.ToUpsert, false)
	srv9 := persisted[1].ID

	saved, unmatched := ReconcileTasks([]Task{editedB, c}, persisted)

	assert.Empty(t, unmatched)
	require.Len(t, saved, 2)
	assert.Equal(t, b.Ref, saved[0].Ref)
	assert.Equal(t, 0, saved[0].Order)
	assert.Equal(t, Persisted(srv9), saved[1].Ref)
	assert.Equal(t, 1, saved[1].Order)
	assert.Equal(t, "C", saved[1].Title)
	assert.Len(t, saved[1].Criteria, 1, "criteria travel with the reconciled task")
	assert.Empty(t, saved[1].Files)
}

func TestReconcileTasks_PositionalMatch(t *testing.T) {
	interviewID := uuid.New()
	edited := []Task{
		persistedTask(interviewID, "A", 0),
		persistedTask(interviewID, "B", 1),
		NewTask(interviewID, 2),
	}
	newID := uuid.New()
	aID, _ := edited[0].Ref.ID()
	bID, _ := edited[1].Ref.ID()
	persisted := []TaskRow{
		{ID: aID, InterviewID: interviewID, Order: 0},
		{ID: bID, InterviewID: interviewID, Order: 1},
		{ID: newID, InterviewID: interviewID, Order: 2},
	}

	saved, unmatched := ReconcileTasks(edited, persisted)

	assert.Empty(t, unmatched)
	require.Len(t, saved, 3)
	assert.Equal(t, Persisted(newID), saved[2].Ref)
}

func TestReconcileTasks_ClientKeyBeatsPosition(t *testing.T) {
	interviewID := uuid.New()
	first := NewTask(interviewID, 0)
	second := NewTask(interviewID, 1)

	// Rows come back with swapped orders; keys still identify them.
	firstID, secondID := uuid.New(), uuid.New()
	persisted := []TaskRow{
		{ID: secondID, ClientKey: second.Ref.ClientKey(), Order: 0},
		{ID: firstID, ClientKey: first.Ref.ClientKey(), Order: 1},
	}

	saved, unmatched := ReconcileTasks([]Task{first, second}, persisted)

	assert.Empty(t, unmatched)
	require.Len(t, saved, 2)
	assert.Equal(t, Persisted(secondID), saved[0].Ref)
	assert.Equal(t, Persisted(firstID), saved[1].Ref)
}

func TestReconcileTasks_DuplicateOrdersAreAmbiguous(t *testing.T) {
	interviewID := uuid.New()
	x := NewTask(interviewID, 0)
	y := NewTask(interviewID, 0)
	persisted := []TaskRow{{ID: uuid.New(), Order: 0}, {ID: uuid.New(), Order: 0}}

	saved, unmatched := ReconcileTasks([]Task{x, y}, persisted)

	assert.Empty(t, saved)
	assert.ElementsMatch(t, []Ref{x.Ref, y.Ref}, unmatched)
}

func TestReconcileTasks_MissingRowIsReported(t *testing.T) {
	interviewID := uuid.New()
	kept := persistedTask(interviewID, "A", 0)
	lost := NewTask(interviewID, 1)
	keptID, _ := kept.Ref.ID()

	saved, unmatched := ReconcileTasks([]Task{kept, lost}, []TaskRow{{ID: keptID, Order: 0}})

	require.Len(t, saved, 1)
	assert.Equal(t, []Ref{lost.Ref}, unmatched)
}

func TestReconcileTasks_OrderInvariant(t *testing.T) {
	interviewID := uuid.New()
	interview := RehydrateInterview(interviewID, "owner@example.com", "T", StatusDraft, nil, nil, time.Time{}, time.Time{})
	for range 5 {
		interview.AddTask()
	}
	tasks := interview.Tasks()
	require.NoError(t, interview.ReorderTasks([]Ref{tasks[4].Ref, tasks[2].Ref, tasks[0].Ref, tasks[3].Ref, tasks[1].Ref}))
	require.NoError(t, interview.RemoveTask(tasks[3].Ref))
	arranged := interview.Tasks()

	diff := DiffTasks(interviewID, nil, arranged)
	saved, unmatched := ReconcileTasks(arranged, echoRows(diff.ToUpsert, true))

	assert.Empty(t, unmatched)
	require.Len(t, saved, len(arranged))
	for i, task := range saved {
		assert.Equal(t, i, task.Order)
		assert.Equal(t, arranged[i].Title, task.Title)
	}
	assert.NoError(t, ValidateTaskOrder(saved))
}

func TestReconcileCriteria(t *testing.T) {
	interviewID := uuid.New()
	general := []Criterion{
		persistedCriterion("Communication", ScopeGeneral),
		NewCriterion("Culture", "fit", CriterionBoolean, ScopeGeneral),
	}
	task := persistedTask(interviewID, "A", 0, NewCriterion("Depth", "", CriterionNumeric, ScopeTask))

	batch, err := BuildCriteriaBatch(interviewID, general, []Task{task})
	require.NoError(t, err)
	persisted := make([]CriterionRow, len(batch))
	for i, row := range batch {
		persisted[i] = row
		if row.IsNew() {
			persisted[i].ID = uuid.New()
		}
	}

	gotGeneral, gotTasks, unmatched := ReconcileCriteria(general, []Task{task}, persisted)

	assert.Empty(t, unmatched)
	require.Len(t, gotGeneral, 2)
	assert.Equal(t, general[0].Ref, gotGeneral[0].Ref)
	assert.Equal(t, Persisted(persisted[1].ID), gotGeneral[1].Ref)
	assert.Equal(t, "fit", gotGeneral[1].Description)
	require.Len(t, gotTasks[0].Criteria, 1)
	assert.True(t, gotTasks[0].Criteria[0].Ref.IsPersisted())
	assert.True(t, task.Criteria[0].Ref.IsPending(), "input must not be mutated")
}

func TestReconcileCriteria_Unmatched(t *testing.T) {
	pending := NewCriterion("Culture", "", CriterionBoolean, ScopeGeneral)

	gotGeneral, _, unmatched := ReconcileCriteria([]Criterion{pending}, nil, nil)

	assert.Empty(t, gotGeneral)
	assert.Equal(t, []Ref{pending.Ref}, unmatched)
}
