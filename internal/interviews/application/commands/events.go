package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/panelist/internal/shared/domain"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// ListingInvalidator drops the cached interview listing of an owner.
type ListingInvalidator interface {
	InvalidateListing(ctx context.Context, ownerEmail string) error
}

// recordEvents stamps events with the request metadata and stores them in
// the outbox within the transaction in ctx.
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
