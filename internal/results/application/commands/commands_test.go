package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/application/commands"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

func TestInviteCandidate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	interview := e.interview(t, interviews.StatusLive)

	c := e.invite(t, interview, "Ada@Example.com")
	assert.Equal(t, "ada@example.com", c.Email())
	assert.Empty(t, c.DomainEvents())
	assert.Contains(t, e.routingKeys(t), domain.RoutingKeyCandidateInvited)
	assert.Equal(t, []string{owner}, e.invalidator.Owners())

	found, err := e.repo.FindByID(ctx, c.ID(), interview.ID())
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", found.Name())

	t.Run("duplicate email", func(t *testing.T) {
		_, err := commands.NewInviteCandidateHandler(e.deps()).Handle(ctx, commands.InviteCandidateCommand{
			InterviewID: interview.ID(),
			OwnerEmail:  owner,
			Name:        "Ada again",
			Email:       "ada@example.com",
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateCandidate)
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := commands.NewInviteCandidateHandler(e.deps()).Handle(ctx, commands.InviteCandidateCommand{
			InterviewID: interview.ID(),
			OwnerEmail:  "someone@example.com",
			Name:        "Grace",
			Email:       "grace@example.com",
		})
		assert.ErrorIs(t, err, interviews.ErrInterviewNotFound)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := commands.NewInviteCandidateHandler(e.deps()).Handle(ctx, commands.InviteCandidateCommand{
			InterviewID: interview.ID(),
			OwnerEmail:  owner,
			Name:        "Grace",
			Email:       "not an email",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestInviteCandidate_DraftInterview(t *testing.T) {
	e := newEnv(t)
	interview := e.interview(t, interviews.StatusDraft)

	_, err := commands.NewInviteCandidateHandler(e.deps()).Handle(context.Background(), commands.InviteCandidateCommand{
		InterviewID: interview.ID(),
		OwnerEmail:  owner,
		Name:        "Ada",
		Email:       "ada@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrInterviewNotLive)
}

func TestCompleteCandidate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	interview := e.interview(t, interviews.StatusLive)
	c := e.invite(t, interview, "ada@example.com")

	handler := commands.NewCompleteCandidateHandler(e.deps())
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	completed, err := handler.Handle(ctx, commands.CompleteCandidateCommand{
		InterviewID: interview.ID(),
		CandidateID: c.ID(),
		OwnerEmail:  owner,
		At:          at,
	})
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt())
	assert.True(t, at.Equal(*completed.CompletedAt()))
	assert.Contains(t, e.routingKeys(t), domain.RoutingKeyCandidateCompleted)

	_, err = handler.Handle(ctx, commands.CompleteCandidateCommand{
		InterviewID: interview.ID(),
		CandidateID: c.ID(),
		OwnerEmail:  owner,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	_, err = handler.Handle(ctx, commands.CompleteCandidateCommand{
		InterviewID: interview.ID(),
		CandidateID: uuid.New(),
		OwnerEmail:  owner,
	})
	assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
}

func TestRecordScore(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	interview := e.interview(t, interviews.StatusLive)
	c := e.invite(t, interview, "ada@example.com")
	handler := commands.NewRecordScoreHandler(e.deps())

	general := interview.GeneralCriteria()
	require.Len(t, general, 2)
	hire := interview.Tasks()[0].Criteria[0]

	record := func(criterion uuid.UUID, value float64) (*domain.Candidate, error) {
		return handler.Handle(ctx, commands.RecordScoreCommand{
			InterviewID: interview.ID(),
			CandidateID: c.ID(),
			OwnerEmail:  owner,
			CriterionID: criterion,
			Value:       value,
		})
	}

	_, err := record(criterionID(t, general[0]), 4)
	require.NoError(t, err)
	scored, err := record(criterionID(t, hire), 1)
	require.NoError(t, err)

	scores := scored.Scores()
	require.Len(t, scores, 2)
	assert.Equal(t, "Communication", scores[0].CriterionName)
	assert.Equal(t, "Hire", scores[1].CriterionName)
	assert.True(t, scores[1].Passed())
	assert.Contains(t, e.routingKeys(t), domain.RoutingKeyCandidateReviewed)

	overall, ok := scored.OverallScore()
	assert.True(t, ok)
	assert.Equal(t, 4.0, overall)

	t.Run("text criterion", func(t *testing.T) {
		_, err := record(criterionID(t, general[1]), 1)
		assert.ErrorIs(t, err, domain.ErrNotScorable)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := record(criterionID(t, general[0]), 6)
		assert.ErrorIs(t, err, domain.ErrScoreOutOfRange)
	})

	t.Run("criterion of another interview", func(t *testing.T) {
		other := e.interview(t, interviews.StatusLive)
		_, err := record(criterionID(t, other.GeneralCriteria()[0]), 3)
		assert.ErrorIs(t, err, domain.ErrCriterionNotInInterview)
	})
}

func TestAddNote(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	interview := e.interview(t, interviews.StatusLive)
	c := e.invite(t, interview, "ada@example.com")
	handler := commands.NewAddNoteHandler(e.deps())

	noted, err := handler.Handle(ctx, commands.AddNoteCommand{
		InterviewID: interview.ID(),
		CandidateID: c.ID(),
		OwnerEmail:  owner,
		Column:      "Communication",
		Content:     "  Explains trade-offs well ",
	})
	require.NoError(t, err)
	require.Len(t, noted.Notes(), 1)
	assert.Equal(t, owner, noted.Notes()[0].Author)
	assert.Equal(t, "Explains trade-offs well", noted.Notes()[0].Content)

	found, err := e.repo.FindByID(ctx, c.ID(), interview.ID())
	require.NoError(t, err)
	assert.Len(t, found.Notes(), 1)

	_, err = handler.Handle(ctx, commands.AddNoteCommand{
		InterviewID: interview.ID(),
		CandidateID: c.ID(),
		OwnerEmail:  owner,
		Content:     "   ",
	})
	assert.ErrorIs(t, err, domain.ErrEmptyNote)
}
