package domain

import (
	"math"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	sharedDomain "github.com/felixgeelhaar/panelist/internal/shared/domain"
)

// Candidate is a person invited to take an interview, with their scores and
// reviewer notes.
type Candidate struct {
	sharedDomain.BaseAggregateRoot
	interviewID uuid.UUID
	name        string
	email       string
	invitedAt   time.Time
	completedAt *time.Time
	scores      []Score
	notes       []Note
}

// NewCandidate invites a candidate to an interview. ownerEmail is carried on
// the recorded event.
func NewCandidate(interviewID uuid.UUID, ownerEmail, name, email string) (*Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	c := &Candidate{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		interviewID:       interviewID,
		name:              name,
		email:             email,
		invitedAt:         time.Now().UTC(),
		scores:            []Score{},
		notes:             []Note{},
	}
	c.AddDomainEvent(NewCandidateInvited(c, ownerEmail))
	return c, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Getters
func (c *Candidate) InterviewID() uuid.UUID  { return c.interviewID }
func (c *Candidate) Name() string            { return c.name }
func (c *Candidate) Email() string           { return c.email }
func (c *Candidate) InvitedAt() time.Time    { return c.invitedAt }
func (c *Candidate) CompletedAt() *time.Time { return c.completedAt }
func (c *Candidate) IsCompleted() bool       { return c.completedAt != nil }
func (c *Candidate) IsGraded() bool          { return len(c.scores) > 0 }

// Scores returns a copy of the scores ordered by criterion name.
func (c *Candidate) Scores() []Score {
	return append([]Score(nil), c.scores...)
}

// Notes returns a copy of the notes, oldest first.
func (c *Candidate) Notes() []Note {
	return append([]Note(nil), c.notes...)
}

// Complete marks the interview as taken.
func (c *Candidate) Complete(at time.Time, ownerEmail string) error {
	if c.completedAt != nil {
		return ErrAlreadyCompleted
	}
	at = at.UTC()
	c.completedAt = &at
	c.Touch()
	c.AddDomainEvent(NewCandidateCompleted(c, ownerEmail))
	return nil
}

// RecordScore sets the score for a criterion, replacing an earlier one.
func (c *Candidate) RecordScore(score Score) {
	for i, s := range c.scores {
		if s.CriterionID == score.CriterionID {
			c.scores[i] = score
			c.Touch()
			return
		}
	}
	c.scores = append(c.scores, score)
	sortScores(c.scores)
	c.Touch()
}

// AddNote appends a note.
func (c *Candidate) AddNote(note Note) {
	c.notes = append(c.notes, note)
	c.Touch()
}

// OverallScore is the mean of the numeric scores rounded to one decimal. ok
// is false when there is no numeric score.
func (c *Candidate) OverallScore() (score float64, ok bool) {
	var sum float64
	var n int
	for _, s := range c.scores {
		if s.Type == interviews.CriterionNumeric {
			sum += s.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}

func sortScores(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CriterionName < scores[j].CriterionName
	})
}

// RehydrateCandidate recreates a candidate from persisted data.
func RehydrateCandidate(
	id, interviewID uuid.UUID,
	name, email string,
	invitedAt time.Time,
	completedAt *time.Time,
	scores []Score,
	notes []Note,
	updatedAt time.Time,
) *Candidate {
	s := append([]Score{}, scores...)
	sortScores(s)
	return &Candidate{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, invitedAt, updatedAt),
		),
		interviewID: interviewID,
		name:        name,
		email:       email,
		invitedAt:   invitedAt,
		completedAt: completedAt,
		scores:      s,
		notes:       append([]Note{}, notes...),
	}
}
