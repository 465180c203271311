package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
)

// CreateInterviewCommand contains the data needed to create an interview.
type CreateInterviewCommand struct {
	OwnerEmail string
	Title      string
}

// CreateInterviewHandler handles interview creation.
type CreateInterviewHandler struct {
	repo        domain.Repository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	invalidator ListingInvalidator
	logger      *slog.Logger
}

// NewCreateInterviewHandler creates a new CreateInterviewHandler.
func NewCreateInterviewHandler(
	repo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	invalidator ListingInvalidator,
	logger *slog.Logger,
) *CreateInterviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateInterviewHandler{
		repo:        repo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Handle executes the CreateInterviewCommand.
func (h *CreateInterviewHandler) Handle(ctx context.Context, cmd CreateInterviewCommand) (*domain.Interview, error) {
	interview, err := domain.NewInterview(cmd.OwnerEmail, cmd.Title)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.repo.Create(txCtx, interview); err != nil {
			return err
		}
		return recordEvents(txCtx, h.outboxRepo, interview.OwnerEmail(), interview.DomainEvents())
	})
	if err != nil {
		return nil, err
	}
	interview.ClearDomainEvents()

	h.logger.InfoContext(ctx, "interview created",
		"interview_id", interview.ID(),
		"owner_email", interview.OwnerEmail(),
	)
	invalidate(ctx, h.invalidator, h.logger, interview.OwnerEmail())

	return interview, nil
}

func invalidate(ctx context.Context, invalidator ListingInvalidator, logger *slog.Logger, ownerEmail string) {
	if invalidator == nil {
		return
	}
	if err := invalidator.InvalidateListing(ctx, ownerEmail); err != nil {
		logger.WarnContext(ctx, "failed to invalidate interview listing",
			"owner_email", ownerEmail,
			"error", err,
		)
	}
}
