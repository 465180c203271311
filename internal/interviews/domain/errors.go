package domain

import "errors"

var (
	// ErrInterviewNotFound indicates the requested interview was not found.
	ErrInterviewNotFound = errors.New("interview not found")

	// ErrTaskNotFound indicates no task with the given ref exists on the interview.
	ErrTaskNotFound = errors.New("task not found")

	// ErrCriterionNotFound indicates no criterion with the given ref exists on the interview.
	ErrCriterionNotFound = errors.New("criterion not found")

	// ErrStaleInterview indicates the interview changed in the store since
	// the snapshot being saved was loaded.
	ErrStaleInterview = errors.New("interview was modified since it was loaded")

	// ErrInvalidStatusTransition indicates an invalid status transition was attempted.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrNoTasks indicates an interview without tasks cannot be published.
	ErrNoTasks = errors.New("interview has no tasks")

	// ErrInvalidTaskOrder indicates task orders are not a permutation of 0..n-1.
	ErrInvalidTaskOrder = errors.New("task orders must be contiguous and zero-based")

	// ErrScopeMismatch indicates a criterion scope that contradicts its owner.
	ErrScopeMismatch = errors.New("criterion scope does not match its owner")

	// ErrInvalidCriterionType indicates an unknown criterion type.
	ErrInvalidCriterionType = errors.New("invalid criterion type")

	// ErrUnreconciled indicates a pending ref found no persisted row after a write.
	ErrUnreconciled = errors.New("pending ref could not be reconciled")

	// ErrInterviewMismatch indicates original and edited snapshots are different interviews.
	ErrInterviewMismatch = errors.New("original and edited interview do not match")

	// ErrEmptyTitle indicates the title cannot be empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyOwner indicates the owner email cannot be empty.
	ErrEmptyOwner = errors.New("owner email cannot be empty")

	// ErrInvalidDuration indicates a negative task duration.
	ErrInvalidDuration = errors.New("duration cannot be negative")

	// ErrInterviewClosed indicates the interview is closed and cannot be modified.
	ErrInterviewClosed = errors.New("interview is closed")
)
