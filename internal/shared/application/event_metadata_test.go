package application

import (
	"testing"

	"github.com/felixgeelhaar/panelist/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type metadataEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	t.Run("keeps given correlation id", func(t *testing.T) {
		md := NewEventMetadata("corr-1", "owner@example.com")
		assert.Equal(t, "corr-1", md.CorrelationID)
		assert.Equal(t, "owner@example.com", md.Actor)
		assert.NotEmpty(t, md.CausationID)
	})

	t.Run("generates correlation id when empty", func(t *testing.T) {
		md := NewEventMetadata("", "owner@example.com")
		_, err := uuid.Parse(md.CorrelationID)
		assert.NoError(t, err)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	first := &metadataEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Test", "test.one")}
	second := &metadataEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Test", "test.two")}
	md := NewEventMetadata("corr-2", "owner@example.com")

	ApplyEventMetadata([]domain.DomainEvent{first, second}, md)

	assert.Equal(t, md, first.Metadata())
	assert.Equal(t, md, second.Metadata())
}
