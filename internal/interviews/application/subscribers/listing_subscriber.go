package subscribers

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	results "github.com/felixgeelhaar/panelist/internal/results/domain"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/eventbus"
)

// ListingSubscriber drops an owner's cached interview listing when an event
// changes what the listing shows. Handlers invalidate after commit too; this
// covers processes that share the cache but not the handler.
type ListingSubscriber struct {
	invalidator commands.ListingInvalidator
	logger      *slog.Logger
}

// NewListingSubscriber creates a new listing subscriber.
func NewListingSubscriber(invalidator commands.ListingInvalidator, logger *slog.Logger) *ListingSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingSubscriber{invalidator: invalidator, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *ListingSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyCreated,
		domain.RoutingKeySaved,
		domain.RoutingKeyPublished,
		domain.RoutingKeyClosed,
		domain.RoutingKeyDeleted,
		results.RoutingKeyCandidateInvited,
		results.RoutingKeyCandidateCompleted,
		results.RoutingKeyCandidateReviewed,
	}
}

// ownerPayload is the part of every listed event this subscriber reads.
type ownerPayload struct {
	OwnerEmail string `json:"owner_email"`
}

// Handle invalidates the listing of the event's owner.
func (s *ListingSubscriber) Handle(ctx context.Context, event *eventbus.Envelope) error {
	if s.invalidator == nil {
		return nil
	}

	var payload ownerPayload
	if err := event.DecodePayload(&payload); err != nil {
		s.logger.Error("failed to decode event payload",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
		return nil
	}
	if payload.OwnerEmail == "" {
		s.logger.Warn("event has no owner, skipping",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
		)
		return nil
	}

	return s.invalidator.InvalidateListing(ctx, payload.OwnerEmail)
}

var _ eventbus.EventConsumer = (*ListingSubscriber)(nil)
