package domain

import (
	sharedDomain "github.com/felixgeelhaar/panelist/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Interview"

// Routing keys of interview events.
const (
	RoutingKeyCreated   = "interviews.interview.created"
	RoutingKeySaved     = "interviews.interview.saved"
	RoutingKeyPublished = "interviews.interview.published"
	RoutingKeyClosed    = "interviews.interview.closed"
	RoutingKeyDeleted   = "interviews.interview.deleted"
)

// InterviewCreated is emitted when an interview is created.
type InterviewCreated struct {
	sharedDomain.BaseEvent
	InterviewID uuid.UUID `json:"interview_id"`
	OwnerEmail  string    `json:"owner_email"`
	Title       string    `json:"title"`
}

// NewInterviewCreated creates an InterviewCreated event.
func NewInterviewCreated(i *Interview) *InterviewCreated {
	return &InterviewCreated{
		BaseEvent:   sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyCreated),
		InterviewID: i.ID(),
		OwnerEmail:  i.OwnerEmail(),
		Title:       i.Title(),
	}
}

// InterviewSaved is emitted after every successful save.
type InterviewSaved struct {
	sharedDomain.BaseEvent
	InterviewID   uuid.UUID `json:"interview_id"`
	OwnerEmail    string    `json:"owner_email"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	TaskCount     int       `json:"task_count"`
	CriteriaCount int       `json:"criteria_count"`
}

// NewInterviewSaved creates an InterviewSaved event.
func NewInterviewSaved(i *Interview) *InterviewSaved {
	return &InterviewSaved{
		BaseEvent:     sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeySaved),
		InterviewID:   i.ID(),
		OwnerEmail:    i.OwnerEmail(),
		Title:         i.Title(),
		Status:        string(i.Status()),
		TaskCount:     i.TaskCount(),
		CriteriaCount: i.CriteriaCount(),
	}
}

// InterviewPublished is emitted when an interview goes live.
type InterviewPublished struct {
	sharedDomain.BaseEvent
	InterviewID uuid.UUID `json:"interview_id"`
	OwnerEmail  string    `json:"owner_email"`
	TaskCount   int       `json:"task_count"`
}

// NewInterviewPublished creates an InterviewPublished event.
func NewInterviewPublished(i *Interview) *InterviewPublished {
	return &InterviewPublished{
		BaseEvent:   sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyPublished),
		InterviewID: i.ID(),
		OwnerEmail:  i.OwnerEmail(),
		TaskCount:   i.TaskCount(),
	}
}

// InterviewClosed is emitted when an interview is closed.
type InterviewClosed struct {
	sharedDomain.BaseEvent
	InterviewID uuid.UUID `json:"interview_id"`
	OwnerEmail  string    `json:"owner_email"`
}

// NewInterviewClosed creates an InterviewClosed event.
func NewInterviewClosed(i *Interview) *InterviewClosed {
	return &InterviewClosed{
		BaseEvent:   sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyClosed),
		InterviewID: i.ID(),
		OwnerEmail:  i.OwnerEmail(),
	}
}

// InterviewDeleted is emitted when an interview is deleted.
type InterviewDeleted struct {
	sharedDomain.BaseEvent
	InterviewID uuid.UUID `json:"interview_id"`
	OwnerEmail  string    `json:"owner_email"`
}

// NewInterviewDeleted creates an InterviewDeleted event.
func NewInterviewDeleted(i *Interview) *InterviewDeleted {
	return &InterviewDeleted{
		BaseEvent:   sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyDeleted),
		InterviewID: i.ID(),
		OwnerEmail:  i.OwnerEmail(),
	}
}
