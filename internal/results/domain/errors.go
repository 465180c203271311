package domain

import "errors"

var (
	// ErrCandidateNotFound indicates the requested candidate was not found.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrDuplicateCandidate indicates the email is already invited to the interview.
	ErrDuplicateCandidate = errors.New("candidate already invited")

	// ErrInterviewNotLive indicates candidates can only be invited to live interviews.
	ErrInterviewNotLive = errors.New("interview is not live")

	// ErrInvalidEmail indicates a missing or malformed candidate email.
	ErrInvalidEmail = errors.New("invalid candidate email")

	// ErrEmptyName indicates the candidate name cannot be empty.
	ErrEmptyName = errors.New("candidate name cannot be empty")

	// ErrAlreadyCompleted indicates the candidate already completed the interview.
	ErrAlreadyCompleted = errors.New("candidate already completed the interview")

	// ErrCriterionNotInInterview indicates the criterion belongs to another interview.
	ErrCriterionNotInInterview = errors.New("criterion does not belong to the interview")

	// ErrNotScorable indicates text criteria take notes, not scores.
	ErrNotScorable = errors.New("criterion type cannot be scored")

	// ErrScoreOutOfRange indicates a value outside the range of the criterion type.
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrEmptyNote indicates the note content cannot be empty.
	ErrEmptyNote = errors.New("note content cannot be empty")
)
