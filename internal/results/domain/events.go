package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/felixgeelhaar/panelist/internal/shared/domain"
)

const aggregateType = "Candidate"

// Routing keys of results events.
const (
	RoutingKeyCandidateInvited   = "results.candidate.invited"
	RoutingKeyCandidateCompleted = "results.candidate.completed"
	RoutingKeyCandidateReviewed  = "results.candidate.reviewed"
)

// CandidateInvited is emitted when a candidate is invited.
type CandidateInvited struct {
	sharedDomain.BaseEvent
	CandidateID uuid.UUID `json:"candidate_id"`
	InterviewID uuid.UUID `json:"interview_id"`
	OwnerEmail  string    `json:"owner_email"`
	Email       string    `json:"email"`
}

// NewCandidateInvited creates a CandidateInvited event.
func NewCandidateInvited(c *Candidate, ownerEmail string) *CandidateInvited {
	return &CandidateInvited{
		BaseEvent:   sharedDomain.NewBaseEvent(c.ID(), aggregateType, RoutingKeyCandidateInvited),
		CandidateID: c.ID(),
		InterviewID: c.interviewID,
		OwnerEmail:  ownerEmail,
		Email:       c.email,
	}
}

// CandidateCompleted is emitted when a candidate finishes the interview.
type CandidateCompleted struct {
	sharedDomain.BaseEvent
	CandidateID uuid.UUID `json:"candidate_id"`
	InterviewID uuid.UUID `json:"interview_id"`
	OwnerEmail  string    `json:"owner_email"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewCandidateCompleted creates a CandidateCompleted event.
func NewCandidateCompleted(c *Candidate, ownerEmail string) *CandidateCompleted {
	return &CandidateCompleted{
		BaseEvent:   sharedDomain.NewBaseEvent(c.ID(), aggregateType, RoutingKeyCandidateCompleted),
		CandidateID: c.ID(),
		InterviewID: c.interviewID,
		OwnerEmail:  ownerEmail,
		CompletedAt: *c.completedAt,
	}
}

// CandidateReviewed is emitted when a score or note is recorded.
type CandidateReviewed struct {
	sharedDomain.BaseEvent
	CandidateID uuid.UUID `json:"candidate_id"`
	InterviewID uuid.UUID `json:"interview_id"`
	OwnerEmail  string    `json:"owner_email"`
	Scores      int       `json:"scores"`
	Notes       int       `json:"notes"`
}

// NewCandidateReviewed creates a CandidateReviewed event.
func NewCandidateReviewed(c *Candidate, ownerEmail string) *CandidateReviewed {
	return &CandidateReviewed{
		BaseEvent:   sharedDomain.NewBaseEvent(c.ID(), aggregateType, RoutingKeyCandidateReviewed),
		CandidateID: c.ID(),
		InterviewID: c.interviewID,
		OwnerEmail:  ownerEmail,
		Scores:      len(c.scores),
		Notes:       len(c.notes),
	}
}

// MarkReviewed records a CandidateReviewed event.
func (c *Candidate) MarkReviewed(ownerEmail string) {
	c.AddDomainEvent(NewCandidateReviewed(c, ownerEmail))
}
