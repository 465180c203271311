package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
)

// DeleteInterviewCommand identifies the interview to delete.
type DeleteInterviewCommand struct {
	InterviewID uuid.UUID
	OwnerEmail  string
}

// DeleteInterviewHandler deletes an interview with its tasks, criteria and
// results.
type DeleteInterviewHandler struct {
	repo        domain.Repository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	invalidator ListingInvalidator
	logger      *slog.Logger
}

// NewDeleteInterviewHandler creates a new DeleteInterviewHandler.
func NewDeleteInterviewHandler(
	repo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	invalidator ListingInvalidator,
	logger *slog.Logger,
) *DeleteInterviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteInterviewHandler{
		repo:        repo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Handle executes the DeleteInterviewCommand.
func (h *DeleteInterviewHandler) Handle(ctx context.Context, cmd DeleteInterviewCommand) error {
	ownerEmail := domain.NormalizeOwner(cmd.OwnerEmail)

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		interview, err := h.repo.FindByID(txCtx, cmd.InterviewID, ownerEmail)
		if err != nil {
			return err
		}
		interview.MarkDeleted()

		if err := h.repo.Delete(txCtx, cmd.InterviewID, ownerEmail); err != nil {
			return err
		}
		return recordEvents(txCtx, h.outboxRepo, ownerEmail, interview.DomainEvents())
	})
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "interview deleted", "interview_id", cmd.InterviewID)
	invalidate(ctx, h.invalidator, h.logger, ownerEmail)
	return nil
}
