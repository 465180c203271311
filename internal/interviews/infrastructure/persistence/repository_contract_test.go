package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
)

const owner = "owner@example.com"

// runRepositoryContract exercises the store boundary shared by both drivers.
func runRepositoryContract(t *testing.T, repo domain.Repository, uow sharedApplication.UnitOfWork) {
	ctx := context.Background()

	create := func(t *testing.T) *domain.Interview {
		t.Helper()
		interview, err := domain.NewInterview(owner, "Backend Engineer")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, interview))
		return interview
	}

	t.Run("create and find", func(t *testing.T) {
		interview := create(t)

		found, err := repo.FindByID(ctx, interview.ID(), owner)
		require.NoError(t, err)
		assert.Equal(t, "Backend Engineer", found.Title())
		assert.Equal(t, domain.StatusDraft, found.Status())
		assert.Empty(t, found.Tasks())
		assert.Empty(t, found.GeneralCriteria())

		_, err = repo.FindByID(ctx, interview.ID(), "someone@example.com")
		assert.ErrorIs(t, err, domain.ErrInterviewNotFound)
	})

	t.Run("upsert tasks and criteria", func(t *testing.T) {
		interview := create(t)
		first := domain.NewTask(interview.ID(), 0)
		second := domain.NewTask(interview.ID(), 1)
		second.Title = "Live coding"
		second.Requirements.ScreenShare = true

		rows, err := repo.UpsertTasks(ctx, []domain.TaskRow{
			domain.NewTaskRow(interview.ID(), second),
			domain.NewTaskRow(interview.ID(), first),
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, second.Ref.ClientKey(), rows[0].ClientKey)
		assert.Equal(t, first.Ref.ClientKey(), rows[1].ClientKey)
		assert.NotEqual(t, uuid.Nil, rows[0].ID)
		assert.Equal(t, "Live coding", rows[0].Title)
		assert.True(t, rows[0].Requirements.ScreenShare)
		assert.True(t, rows[1].Requirements.Audio)

		taskID := rows[0].ID
		general := domain.NewCriterion("Communication", "clear and concise", domain.CriterionNumeric, domain.ScopeGeneral)
		taskCriterion := domain.NewCriterion("Correctness", "", domain.CriterionBoolean, domain.ScopeTask)
		saved := []domain.Task{rows[1].Task(nil), rows[0].Task([]domain.Criterion{taskCriterion})}
		batch, err := domain.BuildCriteriaBatch(interview.ID(), []domain.Criterion{general}, saved)
		require.NoError(t, err)

		criteria, err := repo.UpsertCriteria(ctx, batch)
		require.NoError(t, err)
		require.Len(t, criteria, 2)
		assert.Equal(t, general.Ref.ClientKey(), criteria[0].ClientKey)
		require.NotNil(t, criteria[1].TaskID)
		assert.Equal(t, taskID, *criteria[1].TaskID)

		found, err := repo.FindByID(ctx, interview.ID(), owner)
		require.NoError(t, err)
		tasks := found.Tasks()
		require.Len(t, tasks, 2)
		assert.Equal(t, domain.DefaultTaskTitle, tasks[0].Title, "tasks load ordered by task_order")
		assert.Equal(t, "Live coding", tasks[1].Title)
		require.Len(t, tasks[1].Criteria, 1)
		assert.Equal(t, "Correctness", tasks[1].Criteria[0].Name)
		assert.Empty(t, tasks[1].Files)
		require.Len(t, found.GeneralCriteria(), 1)
		assert.Equal(t, "clear and concise", found.GeneralCriteria()[0].Description)

		t.Run("update keeps ids", func(t *testing.T) {
			row := domain.NewTaskRow(interview.ID(), tasks[1])
			row.Title = "Pair programming"
			updated, err := repo.UpsertTasks(ctx, []domain.TaskRow{row})
			require.NoError(t, err)
			assert.Equal(t, row.ID, updated[0].ID)
			assert.Equal(t, "Pair programming", updated[0].Title)
		})

		t.Run("delete task cascades its criteria", func(t *testing.T) {
			require.NoError(t, repo.DeleteTasks(ctx, interview.ID(), []uuid.UUID{taskID}))
			found, err := repo.FindByID(ctx, interview.ID(), owner)
			require.NoError(t, err)
			require.Len(t, found.Tasks(), 1)
			assert.Len(t, found.GeneralCriteria(), 1)
		})

		t.Run("delete criteria", func(t *testing.T) {
			require.NoError(t, repo.DeleteCriteria(ctx, interview.ID(), []uuid.UUID{criteria[0].ID}))
			found, err := repo.FindByID(ctx, interview.ID(), owner)
			require.NoError(t, err)
			assert.Empty(t, found.GeneralCriteria())
		})
	})

	t.Run("upsert never moves a task to another interview", func(t *testing.T) {
		a := create(t)
		b := create(t)
		rows, err := repo.UpsertTasks(ctx, []domain.TaskRow{domain.NewTaskRow(a.ID(), domain.NewTask(a.ID(), 0))})
		require.NoError(t, err)

		moved := rows[0]
		moved.InterviewID = b.ID()
		_, err = repo.UpsertTasks(ctx, []domain.TaskRow{moved})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("upsert never moves a criterion to another interview", func(t *testing.T) {
		a := create(t)
		b := create(t)
		batch, err := domain.BuildCriteriaBatch(a.ID(), []domain.Criterion{
			domain.NewCriterion("Secret", "", domain.CriterionNumeric, domain.ScopeGeneral),
		}, nil)
		require.NoError(t, err)
		rows, err := repo.UpsertCriteria(ctx, batch)
		require.NoError(t, err)

		taken := rows[0]
		taken.Name = "Taken"
		bID := b.ID()
		taken.InterviewID = &bID
		_, err = repo.UpsertCriteria(ctx, []domain.CriterionRow{taken})
		assert.ErrorIs(t, err, domain.ErrCriterionNotFound)

		found, err := repo.FindByID(ctx, a.ID(), owner)
		require.NoError(t, err)
		require.Len(t, found.GeneralCriteria(), 1)
		assert.Equal(t, "Secret", found.GeneralCriteria()[0].Name)
	})

	t.Run("deletes are scoped to the interview", func(t *testing.T) {
		a := create(t)
		b := create(t)
		tasks, err := repo.UpsertTasks(ctx, []domain.TaskRow{domain.NewTaskRow(a.ID(), domain.NewTask(a.ID(), 0))})
		require.NoError(t, err)
		batch, err := domain.BuildCriteriaBatch(a.ID(), []domain.Criterion{
			domain.NewCriterion("Communication", "", domain.CriterionNumeric, domain.ScopeGeneral),
		}, []domain.Task{tasks[0].Task([]domain.Criterion{
			domain.NewCriterion("Correctness", "", domain.CriterionBoolean, domain.ScopeTask),
		})})
		require.NoError(t, err)
		criteria, err := repo.UpsertCriteria(ctx, batch)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteTasks(ctx, b.ID(), []uuid.UUID{tasks[0].ID}))
		require.NoError(t, repo.DeleteCriteria(ctx, b.ID(), []uuid.UUID{criteria[0].ID, criteria[1].ID}))

		found, err := repo.FindByID(ctx, a.ID(), owner)
		require.NoError(t, err)
		require.Len(t, found.Tasks(), 1)
		assert.Len(t, found.Tasks()[0].Criteria, 1)
		assert.Len(t, found.GeneralCriteria(), 1)

		require.NoError(t, repo.DeleteCriteria(ctx, a.ID(), []uuid.UUID{criteria[1].ID}))
		found, err = repo.FindByID(ctx, a.ID(), owner)
		require.NoError(t, err)
		assert.Empty(t, found.Tasks()[0].Criteria, "task criteria are deleted through their interview")
	})

	t.Run("update interview", func(t *testing.T) {
		interview := create(t)
		row := interview.Row()
		row.Title = "Staff Engineer"
		row.Status = domain.StatusLive

		updated, err := repo.UpdateInterview(ctx, row)
		require.NoError(t, err)
		assert.Equal(t, "Staff Engineer", updated.Title)
		assert.Equal(t, domain.StatusLive, updated.Status)
		assert.Equal(t, owner, updated.OwnerEmail)
		assert.True(t, updated.UpdatedAt.After(row.UpdatedAt))

		_, err = repo.UpdateInterview(ctx, row)
		assert.ErrorIs(t, err, domain.ErrStaleInterview, "row carries the updated_at from before the first update")

		again, err := repo.UpdateInterview(ctx, updated)
		require.NoError(t, err)
		assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))

		row.OwnerEmail = "someone@example.com"
		_, err = repo.UpdateInterview(ctx, row)
		assert.ErrorIs(t, err, domain.ErrInterviewNotFound)
	})

	t.Run("rolled back unit of work leaves no rows", func(t *testing.T) {
		interview := create(t)
		failure := errors.New("boom")

		err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
			if _, err := repo.UpsertTasks(txCtx, []domain.TaskRow{
				domain.NewTaskRow(interview.ID(), domain.NewTask(interview.ID(), 0)),
			}); err != nil {
				return err
			}
			return failure
		})
		require.ErrorIs(t, err, failure)

		found, err := repo.FindByID(ctx, interview.ID(), owner)
		require.NoError(t, err)
		assert.Empty(t, found.Tasks())
	})

	t.Run("find by owner and delete", func(t *testing.T) {
		interview := create(t)

		all, err := repo.FindByOwner(ctx, owner)
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(all))
		for _, i := range all {
			ids = append(ids, i.ID())
		}
		assert.Contains(t, ids, interview.ID())

		require.NoError(t, repo.Delete(ctx, interview.ID(), owner))
		assert.ErrorIs(t, repo.Delete(ctx, interview.ID(), owner), domain.ErrInterviewNotFound)
		_, err = repo.FindByID(ctx, interview.ID(), owner)
		assert.ErrorIs(t, err, domain.ErrInterviewNotFound)
	})

	t.Run("empty batches are no-ops", func(t *testing.T) {
		assert.NoError(t, repo.DeleteTasks(ctx, uuid.New(), nil))
		assert.NoError(t, repo.DeleteCriteria(ctx, uuid.New(), nil))
		rows, err := repo.UpsertTasks(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, rows)
	})
}
