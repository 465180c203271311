package domain

// Status represents the lifecycle status of an interview.
type Status string

const (
	// StatusDraft indicates the interview is being authored.
	StatusDraft Status = "draft"
	// StatusLive indicates the interview is published to candidates.
	StatusLive Status = "live"
	// StatusClosed indicates the interview no longer accepts candidates.
	StatusClosed Status = "closed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusLive, StatusClosed:
		return true
	default:
		return false
	}
}

// CanTransitionTo returns true if transitioning to the given status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusLive
	case StatusLive:
		return target == StatusClosed
	default:
		return false
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
