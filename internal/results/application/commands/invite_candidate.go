package commands

import (
	"context"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
)

// InviteCandidateCommand invites a candidate to a live interview.
type InviteCandidateCommand struct {
	InterviewID uuid.UUID
	OwnerEmail  string
	Name        string
	Email       string
}

// InviteCandidateHandler handles candidate invitations.
type InviteCandidateHandler struct {
	deps Deps
}

// NewInviteCandidateHandler creates a new InviteCandidateHandler.
func NewInviteCandidateHandler(deps Deps) *InviteCandidateHandler {
	return &InviteCandidateHandler{deps: deps.withDefaults()}
}

// Handle executes the InviteCandidateCommand.
func (h *InviteCandidateHandler) Handle(ctx context.Context, cmd InviteCandidateCommand) (*domain.Candidate, error) {
	interview, err := h.deps.loadInterview(ctx, cmd.InterviewID, cmd.OwnerEmail)
	if err != nil {
		return nil, err
	}
	if interview.Status() != interviews.StatusLive {
		return nil, domain.ErrInterviewNotLive
	}

	candidate, err := domain.NewCandidate(interview.ID(), interview.OwnerEmail(), cmd.Name, cmd.Email)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		exists, err := h.deps.Repo.ExistsByEmail(txCtx, interview.ID(), candidate.Email())
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateCandidate
		}
		if err := h.deps.Repo.Save(txCtx, candidate); err != nil {
			return err
		}
		return recordEvents(txCtx, h.deps.Outbox, interview.OwnerEmail(), candidate.DomainEvents())
	})
	if err != nil {
		return nil, err
	}
	candidate.ClearDomainEvents()

	h.deps.Logger.InfoContext(ctx, "candidate invited",
		"interview_id", interview.ID(),
		"candidate_id", candidate.ID(),
	)
	h.deps.invalidate(ctx, interview.OwnerEmail())

	return candidate, nil
}
