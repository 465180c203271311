package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/panelist/internal/shared/domain"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// InterviewReader loads an owner's interview. The interviews repository
// satisfies it.
type InterviewReader interface {
	FindByID(ctx context.Context, id uuid.UUID, ownerEmail string) (*interviews.Interview, error)
}

// ListingInvalidator drops the cached interview listing of an owner, whose
// stats change with every results command.
type ListingInvalidator interface {
	InvalidateListing(ctx context.Context, ownerEmail string) error
}

// Deps are the collaborators shared by the results command handlers.
type Deps struct {
	Interviews  InterviewReader
	Repo        domain.Repository
	Outbox      outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork
	Invalidator ListingInvalidator
	Logger      *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// loadInterview returns the interview when the owner may see it.
func (d Deps) loadInterview(ctx context.Context, id uuid.UUID, ownerEmail string) (*interviews.Interview, error) {
	return d.Interviews.FindByID(ctx, id, interviews.NormalizeOwner(ownerEmail))
}

// update loads a candidate in a unit of work, applies fn, then saves it
// with its events.
func (d Deps) update(ctx context.Context, interview *interviews.Interview, candidateID uuid.UUID, fn func(c *domain.Candidate) error) (*domain.Candidate, error) {
	var candidate *domain.Candidate
	err := sharedApplication.WithUnitOfWork(ctx, d.UnitOfWork, func(txCtx context.Context) error {
		c, err := d.Repo.FindByID(txCtx, candidateID, interview.ID())
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := d.Repo.Save(txCtx, c); err != nil {
			return err
		}
		candidate = c
		return recordEvents(txCtx, d.Outbox, interview.OwnerEmail(), c.DomainEvents())
	})
	if err != nil {
		return nil, err
	}
	candidate.ClearDomainEvents()
	d.invalidate(ctx, interview.OwnerEmail())
	return candidate, nil
}

func (d Deps) invalidate(ctx context.Context, ownerEmail string) {
	if d.Invalidator == nil {
		return
	}
	if err := d.Invalidator.InvalidateListing(ctx, ownerEmail); err != nil {
		d.Logger.WarnContext(ctx, "failed to invalidate interview listing",
			"owner_email", ownerEmail,
			"error", err,
		)
	}
}

func recordEvents(ctx context.Context, outboxRepo outbox.Repository, actor string, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	metadata := sharedApplication.NewEventMetadata(observability.CorrelationIDFromContext(ctx), actor)
	sharedApplication.ApplyEventMetadata(events, metadata)

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return outboxRepo.SaveBatch(ctx, msgs)
}
