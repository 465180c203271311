package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

const owner = "results-owner@example.com"

// runRepositoryContract exercises the candidate store for both drivers.
// interviewRepo seeds the interviews and criteria that candidates point at.
func runRepositoryContract(t *testing.T, repo domain.Repository, interviewRepo interviews.Repository) {
	ctx := context.Background()

	seed := func(t *testing.T) (uuid.UUID, []interviews.Criterion) {
		t.Helper()
		interview, err := interviews.NewInterview(owner, "Platform Engineer")
		require.NoError(t, err)
		require.NoError(t, interviewRepo.Create(ctx, interview))

		id := interview.ID()
		rows, err := interviewRepo.UpsertCriteria(ctx, []interviews.CriterionRow{
			{ClientKey: "a", InterviewID: &id, Name: "Communication", Type: interviews.CriterionNumeric, Scope: interviews.ScopeGeneral, Position: 0},
			{ClientKey: "b", InterviewID: &id, Name: "Hire", Type: interviews.CriterionBoolean, Scope: interviews.ScopeGeneral, Position: 1},
		})
		require.NoError(t, err)
		return id, []interviews.Criterion{rows[0].Criterion(), rows[1].Criterion()}
	}

	invite := func(t *testing.T, interviewID uuid.UUID, name, email string) *domain.Candidate {
		t.Helper()
		c, err := domain.NewCandidate(interviewID, owner, name, email)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
		return c
	}

	t.Run("save and find", func(t *testing.T) {
		interviewID, _ := seed(t)
		c := invite(t, interviewID, "Ada Lovelace", "Ada@Example.com")

		found, err := repo.FindByID(ctx, c.ID(), interviewID)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", found.Name())
		assert.Equal(t, "ada@example.com", found.Email())
		assert.False(t, found.IsCompleted())
		assert.Empty(t, found.Scores())
		assert.Empty(t, found.Notes())

		_, err = repo.FindByID(ctx, c.ID(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
	})

	t.Run("exists by email", func(t *testing.T) {
		interviewID, _ := seed(t)
		invite(t, interviewID, "Grace Hopper", "grace@example.com")

		exists, err := repo.ExistsByEmail(ctx, interviewID, "grace@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, interviewID, "alan@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		interviewID, _ := seed(t)
		invite(t, interviewID, "Grace Hopper", "grace@example.com")

		again, err := domain.NewCandidate(interviewID, owner, "Grace H.", "grace@example.com")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, again), domain.ErrDuplicateCandidate)
	})

	t.Run("scores upsert and notes append", func(t *testing.T) {
		interviewID, criteria := seed(t)
		c := invite(t, interviewID, "Alan Turing", "alan@example.com")

		score, err := domain.NewScore(criteria[0], 4)
		require.NoError(t, err)
		c.RecordScore(score)
		note, err := domain.NewNote("reviewer@example.com", "Strengths", "Clear explanations")
		require.NoError(t, err)
		c.AddNote(note)
		require.NoError(t, repo.Save(ctx, c))

		score, err = domain.NewScore(criteria[0], 2)
		require.NoError(t, err)
		c.RecordScore(score)
		require.NoError(t, repo.Save(ctx, c))

		found, err := repo.FindByID(ctx, c.ID(), interviewID)
		require.NoError(t, err)
		require.Len(t, found.Scores(), 1)
		assert.Equal(t, "Communication", found.Scores()[0].CriterionName)
		assert.Equal(t, interviews.CriterionNumeric, found.Scores()[0].Type)
		assert.Equal(t, 2.0, found.Scores()[0].Value)

		require.Len(t, found.Notes(), 1)
		assert.Equal(t, note.ID, found.Notes()[0].ID)
		assert.Equal(t, "Strengths", found.Notes()[0].Column)
		assert.Equal(t, "Clear explanations", found.Notes()[0].Content)
	})

	t.Run("complete", func(t *testing.T) {
		interviewID, _ := seed(t)
		c := invite(t, interviewID, "Alan Turing", "alan@example.com")
		require.NoError(t, c.Complete(time.Now(), owner))
		require.NoError(t, repo.Save(ctx, c))

		found, err := repo.FindByID(ctx, c.ID(), interviewID)
		require.NoError(t, err)
		assert.True(t, found.IsCompleted())
	})

	t.Run("find by interview keeps invitation order", func(t *testing.T) {
		interviewID, criteria := seed(t)
		first := invite(t, interviewID, "First", "first@example.com")
		second := invite(t, interviewID, "Second", "second@example.com")

		score, err := domain.NewScore(criteria[1], 1)
		require.NoError(t, err)
		second.RecordScore(score)
		require.NoError(t, repo.Save(ctx, second))

		found, err := repo.FindByInterview(ctx, interviewID)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, first.ID(), found[0].ID())
		assert.Empty(t, found[0].Scores())
		assert.Equal(t, second.ID(), found[1].ID())
		assert.Len(t, found[1].Scores(), 1)

		none, err := repo.FindByInterview(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("stats", func(t *testing.T) {
		interviewID, criteria := seed(t)
		empty, _ := seed(t)

		invite(t, interviewID, "Invited", "invited@example.com")
		done := invite(t, interviewID, "Done", "done@example.com")
		require.NoError(t, done.Complete(time.Now(), owner))
		score, err := domain.NewScore(criteria[0], 5)
		require.NoError(t, err)
		done.RecordScore(score)
		require.NoError(t, repo.Save(ctx, done))

		stats, err := repo.StatsFor(ctx, []uuid.UUID{interviewID, empty})
		require.NoError(t, err)
		assert.Equal(t, interviews.Stats{Invited: 2, Completed: 1, Graded: 1}, stats[interviewID])
		assert.Equal(t, interviews.Stats{}, stats[empty])

		stats, err = repo.StatsFor(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, stats)
	})

	t.Run("deleting a criterion drops its scores", func(t *testing.T) {
		interviewID, criteria := seed(t)
		c := invite(t, interviewID, "Alan Turing", "alan@example.com")
		score, err := domain.NewScore(criteria[0], 3)
		require.NoError(t, err)
		c.RecordScore(score)
		require.NoError(t, repo.Save(ctx, c))

		id, _ := criteria[0].Ref.ID()
		require.NoError(t, interviewRepo.DeleteCriteria(ctx, interviewID, []uuid.UUID{id}))

		found, err := repo.FindByID(ctx, c.ID(), interviewID)
		require.NoError(t, err)
		assert.Empty(t, found.Scores())
	})
}
