package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

// CompleteCandidateCommand marks a candidate's interview as taken. A zero
// At means now.
type CompleteCandidateCommand struct {
	InterviewID uuid.UUID
	CandidateID uuid.UUID
	OwnerEmail  string
	At          time.Time
}

// CompleteCandidateHandler handles candidate completion.
type CompleteCandidateHandler struct {
	deps Deps
}

// NewCompleteCandidateHandler creates a new CompleteCandidateHandler.
func NewCompleteCandidateHandler(deps Deps) *CompleteCandidateHandler {
	return &CompleteCandidateHandler{deps: deps.withDefaults()}
}

// Handle executes the CompleteCandidateCommand.
func (h *CompleteCandidateHandler) Handle(ctx context.Context, cmd CompleteCandidateCommand) (*domain.Candidate, error) {
	interview, err := h.deps.loadInterview(ctx, cmd.InterviewID, cmd.OwnerEmail)
	if err != nil {
		return nil, err
	}

	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}

	candidate, err := h.deps.update(ctx, interview, cmd.CandidateID, func(c *domain.Candidate) error {
		return c.Complete(at, interview.OwnerEmail())
	})
	if err != nil {
		return nil, err
	}

	h.deps.Logger.InfoContext(ctx, "candidate completed",
		"interview_id", interview.ID(),
		"candidate_id", candidate.ID(),
	)
	return candidate, nil
}
