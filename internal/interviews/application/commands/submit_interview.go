package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// SubmitInterviewCommand saves a Draft over the stored interview.
type SubmitInterviewCommand struct {
	InterviewID uuid.UUID
	OwnerEmail  string
	Draft       Draft
}

// SubmitInterviewHandler loads the stored interview as the original snapshot,
// applies the draft and runs the save.
type SubmitInterviewHandler struct {
	repo domain.Repository
	save *SaveInterviewHandler
}

// NewSubmitInterviewHandler creates a new SubmitInterviewHandler.
func NewSubmitInterviewHandler(repo domain.Repository, save *SaveInterviewHandler) *SubmitInterviewHandler {
	return &SubmitInterviewHandler{repo: repo, save: save}
}

// Handle executes the SubmitInterviewCommand.
func (h *SubmitInterviewHandler) Handle(ctx context.Context, cmd SubmitInterviewCommand) (*SaveResult, error) {
	original, err := h.repo.FindByID(ctx, cmd.InterviewID, domain.NormalizeOwner(cmd.OwnerEmail))
	if err != nil {
		return nil, err
	}

	edited, err := cmd.Draft.Apply(original)
	if err != nil {
		return nil, err
	}

	return h.save.Handle(ctx, SaveInterviewCommand{Original: original, Edited: edited})
}
