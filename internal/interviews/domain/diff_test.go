package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistedTask(interviewID uuid.UUID, title string, order int, criteria ...Criterion) Task {
	if criteria == nil {
		criteria = []Criterion{}
	}
	return Task{
		Ref:         Persisted(uuid.New()),
		InterviewID: interviewID,
		Title:       title,
		AIBehavior:  AIBehaviorNeutral,
		Order:       order,
		Files:       []string{},
		Criteria:    criteria,
	}
}

func persistedCriterion(name string, scope Scope) Criterion {
	return Criterion{Ref: Persisted(uuid.New()), Name: name, Type: CriterionNumeric, Scope: scope}
}

func TestDiffTasks_Scenario(t *testing.T) {
	interviewID := uuid.New()
	a := persistedTask(interviewID, "A", 0)
	b := persistedTask(interviewID, "B", 1)

	editedB := b.Clone()
	editedB.Order = 0
	c := NewTask(interviewID, 1)
	c.Title = "C"

	diff := DiffTasks(interviewID, []Task{a, b}, []Task{editedB, c})

	aID, _ := a.Ref.ID()
	bID, _ := b.Ref.ID()
	assert.Equal(t, []uuid.UUID{aID}, diff.ToDelete)
	require.Len(t, diff.ToUpsert, 2)
	assert.Equal(t, bID, diff.ToUpsert[0].ID)
	assert.Equal(t, 0, diff.ToUpsert[0].Order)
	assert.True(t, diff.ToUpsert[1].IsNew(), "pending task is sent without an id")
	assert.Equal(t, c.Ref.ClientKey(), diff.ToUpsert[1].ClientKey)
	assert.Equal(t, 1, diff.ToUpsert[1].Order)
}

func TestDiffTasks_Partition(t *testing.T) {
	interviewID := uuid.New()
	original := []Task{
		persistedTask(interviewID, "A", 0),
		persistedTask(interviewID, "B", 1),
		persistedTask(interviewID, "C", 2),
		persistedTask(interviewID, "D", 3),
	}
	edited := []Task{original[3].Clone(), NewTask(interviewID, 1), original[1].Clone(), NewTask(interviewID, 3)}
	edited[2].Order = 2
	edited[0].Order = 0

	diff := DiffTasks(interviewID, original, edited)

	originalIDs := map[uuid.UUID]bool{}
	for _, task := range original {
		id, _ := task.Ref.ID()
		originalIDs[id] = true
	}

	covered := map[uuid.UUID]int{}
	for _, id := range diff.ToDelete {
		covered[id]++
	}
	for _, row := range diff.ToUpsert {
		if !row.IsNew() {
			covered[row.ID]++
		}
	}

	assert.Len(t, covered, len(originalIDs))
	for id, n := range covered {
		assert.True(t, originalIDs[id])
		assert.Equal(t, 1, n, "each original id lands in exactly one set")
	}
	assert.Len(t, diff.ToUpsert, len(edited))
}

func TestDiffTasks_PendingNeverDeleted(t *testing.T) {
	interviewID := uuid.New()
	pending := NewTask(interviewID, 0)

	diff := DiffTasks(interviewID, []Task{pending}, []Task{})

	assert.Empty(t, diff.ToDelete)
	assert.Empty(t, diff.ToUpsert)
}

func TestDiffTasks_Idempotent(t *testing.T) {
	interviewID := uuid.New()
	original := []Task{
		persistedTask(interviewID, "A", 0, persistedCriterion("Depth", ScopeTask)),
		persistedTask(interviewID, "B", 1),
	}
	general := []Criterion{persistedCriterion("Communication", ScopeGeneral)}

	diff := DiffTasks(interviewID, original, cloneTasks(original))
	assert.Empty(t, diff.ToDelete)
	for i, row := range diff.ToUpsert {
		assert.Equal(t, NewTaskRow(interviewID, original[i]), row)
	}

	criteriaDiff := DiffCriteria(general, original, general, original)
	assert.Empty(t, criteriaDiff.ToDelete)
}

func TestDiffTasks_DoesNotMutateInput(t *testing.T) {
	interviewID := uuid.New()
	original := []Task{persistedTask(interviewID, "A", 0, persistedCriterion("Depth", ScopeTask))}
	original[0].Files = []string{"brief.pdf"}
	snapshot := cloneTasks(original)

	DiffTasks(interviewID, original, original)

	assert.Equal(t, snapshot, original)
}

func TestDiffCriteria_GeneralCriterionDeleted(t *testing.T) {
	interviewID := uuid.New()
	keep := persistedCriterion("Communication", ScopeGeneral)
	drop := persistedCriterion("Culture", ScopeGeneral)
	tasks := []Task{persistedTask(interviewID, "A", 0)}

	diff := DiffCriteria([]Criterion{keep, drop}, tasks, []Criterion{keep}, tasks)

	dropID, _ := drop.Ref.ID()
	assert.Equal(t, []uuid.UUID{dropID}, diff.ToDelete)

	batch, err := BuildCriteriaBatch(interviewID, []Criterion{keep}, tasks)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	keepID, _ := keep.Ref.ID()
	assert.Equal(t, keepID, batch[0].ID)
}

func TestDiffCriteria_DeletedTaskCascades(t *testing.T) {
	interviewID := uuid.New()
	removedCriterion := persistedCriterion("Depth", ScopeTask)
	survivingCriterion := persistedCriterion("Speed", ScopeTask)
	droppedCriterion := persistedCriterion("Style", ScopeTask)
	deleted := persistedTask(interviewID, "A", 0, removedCriterion)
	kept := persistedTask(interviewID, "B", 1, survivingCriterion, droppedCriterion)

	saved := kept.Clone()
	saved.Order = 0
	saved.Criteria = []Criterion{survivingCriterion}

	diff := DiffCriteria(nil, []Task{deleted, kept}, nil, []Task{saved})

	droppedID, _ := droppedCriterion.Ref.ID()
	assert.Equal(t, []uuid.UUID{droppedID}, diff.ToDelete, "criteria of deleted tasks are left to the cascade")
}

func TestDiffCriteria_MovedCriterionIsKept(t *testing.T) {
	interviewID := uuid.New()
	moved := persistedCriterion("Depth", ScopeTask)
	task := persistedTask(interviewID, "A", 0, moved)

	asGeneral := moved
	asGeneral.Scope = ScopeGeneral
	saved := task.Clone()
	saved.Criteria = []Criterion{}

	diff := DiffCriteria(nil, []Task{task}, []Criterion{asGeneral}, []Task{saved})
	assert.Empty(t, diff.ToDelete)
}

func TestBuildCriteriaBatch_Ownership(t *testing.T) {
	interviewID := uuid.New()
	task := persistedTask(interviewID, "A", 0,
		NewCriterion("Depth", "", CriterionNumeric, ScopeTask),
		persistedCriterion("Speed", ScopeTask),
	)
	general := []Criterion{
		NewCriterion("Communication", "", CriterionBoolean, ScopeGeneral),
		persistedCriterion("Culture", ScopeGeneral),
	}

	batch, err := BuildCriteriaBatch(interviewID, general, []Task{task})
	require.NoError(t, err)
	require.Len(t, batch, 4)

	taskID, _ := task.Ref.ID()
	for _, row := range batch {
		require.NoError(t, row.Validate())
		switch row.Scope {
		case ScopeGeneral:
			require.NotNil(t, row.InterviewID)
			assert.Nil(t, row.TaskID)
			assert.Equal(t, interviewID, *row.InterviewID)
		case ScopeTask:
			require.NotNil(t, row.TaskID)
			assert.Nil(t, row.InterviewID)
			assert.Equal(t, taskID, *row.TaskID)
		}
	}
	assert.True(t, batch[0].IsNew())
	assert.Equal(t, general[0].Ref.ClientKey(), batch[0].ClientKey)
	assert.Equal(t, 1, batch[1].Position)
}

func TestBuildCriteriaBatch_Errors(t *testing.T) {
	interviewID := uuid.New()

	t.Run("scope contradicts container", func(t *testing.T) {
		_, err := BuildCriteriaBatch(interviewID, []Criterion{persistedCriterion("x", ScopeTask)}, nil)
		assert.ErrorIs(t, err, ErrScopeMismatch)
	})

	t.Run("task not reconciled", func(t *testing.T) {
		task := NewTask(interviewID, 0)
		task.Criteria = []Criterion{NewCriterion("x", "", CriterionText, ScopeTask)}
		_, err := BuildCriteriaBatch(interviewID, nil, []Task{task})
		assert.ErrorIs(t, err, ErrUnreconciled)
	})
}

func TestCriterionRow_Validate(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		row  CriterionRow
		ok   bool
	}{
		{"general with interview", CriterionRow{Scope: ScopeGeneral, Type: CriterionText, InterviewID: &id}, true},
		{"task with task", CriterionRow{Scope: ScopeTask, Type: CriterionText, TaskID: &id}, true},
		{"general with task", CriterionRow{Scope: ScopeGeneral, Type: CriterionText, TaskID: &id}, false},
		{"both owners", CriterionRow{Scope: ScopeTask, Type: CriterionText, TaskID: &id, InterviewID: &id}, false},
		{"no owner", CriterionRow{Scope: ScopeTask, Type: CriterionText}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.row.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrScopeMismatch)
			}
		})
	}
}
