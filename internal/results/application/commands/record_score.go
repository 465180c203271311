package commands

import (
	"context"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

// RecordScoreCommand sets a candidate's score on one criterion.
type RecordScoreCommand struct {
	InterviewID uuid.UUID
	CandidateID uuid.UUID
	OwnerEmail  string
	CriterionID uuid.UUID
	Value       float64
}

// RecordScoreHandler handles scoring.
type RecordScoreHandler struct {
	deps Deps
}

// NewRecordScoreHandler creates a new RecordScoreHandler.
func NewRecordScoreHandler(deps Deps) *RecordScoreHandler {
	return &RecordScoreHandler{deps: deps.withDefaults()}
}

// Handle executes the RecordScoreCommand.
func (h *RecordScoreHandler) Handle(ctx context.Context, cmd RecordScoreCommand) (*domain.Candidate, error) {
	interview, err := h.deps.loadInterview(ctx, cmd.InterviewID, cmd.OwnerEmail)
	if err != nil {
		return nil, err
	}

	criterion, ok := FindCriterion(interview, cmd.CriterionID)
	if !ok {
		return nil, domain.ErrCriterionNotInInterview
	}
	score, err := domain.NewScore(criterion, cmd.Value)
	if err != nil {
		return nil, err
	}

	candidate, err := h.deps.update(ctx, interview, cmd.CandidateID, func(c *domain.Candidate) error {
		c.RecordScore(score)
		c.MarkReviewed(interview.OwnerEmail())
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.Logger.InfoContext(ctx, "score recorded",
		"interview_id", interview.ID(),
		"candidate_id", candidate.ID(),
		"criterion_id", cmd.CriterionID,
	)
	return candidate, nil
}

// FindCriterion looks a persisted criterion up among the general and task
// criteria of an interview.
func FindCriterion(interview *interviews.Interview, id uuid.UUID) (interviews.Criterion, bool) {
	match := func(c interviews.Criterion) bool {
		got, ok := c.Ref.ID()
		return ok && got == id
	}
	for _, c := range interview.GeneralCriteria() {
		if match(c) {
			return c, true
		}
	}
	for _, t := range interview.Tasks() {
		for _, c := range t.Criteria {
			if match(c) {
				return c, true
			}
		}
	}
	return interviews.Criterion{}, false
}
