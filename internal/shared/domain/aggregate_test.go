package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/panelist/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testAggregate struct {
	domain.BaseAggregateRoot
}

type testEvent struct {
	domain.BaseEvent
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Empty(t, agg.DomainEvents())

	event := &testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Test", "test.aggregate.created")}
	agg.AddDomainEvent(event)
	agg.AddDomainEvent(&testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Test", "test.aggregate.updated")})

	events := agg.DomainEvents()
	assert.Len(t, events, 2)
	assert.Equal(t, event.EventID(), events[0].EventID())
	assert.Equal(t, "test.aggregate.created", events[0].RoutingKey())
	assert.Equal(t, agg.ID(), events[1].AggregateID())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseEntity_Touch(t *testing.T) {
	entity := domain.NewBaseEntity()
	before := entity.UpdatedAt()

	entity.Touch()

	assert.False(t, entity.UpdatedAt().Before(before))
	assert.Equal(t, entity.CreatedAt(), domain.RehydrateBaseEntity(entity.ID(), entity.CreatedAt(), entity.UpdatedAt()).CreatedAt())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Test", "test.aggregate.created")}
	event.SetMetadata(domain.EventMetadata{CorrelationID: "corr-1", Actor: "owner@example.com"})

	assert.Equal(t, "corr-1", event.Metadata().CorrelationID)
	assert.Equal(t, "owner@example.com", event.Metadata().Actor)
}
