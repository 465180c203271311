package editor

import "errors"

var (
	// ErrSaveInFlight indicates a save of the same interview is still running.
	ErrSaveInFlight = errors.New("a save is already in progress for this interview")

	// ErrNotOpen indicates the interview has no editing session.
	ErrNotOpen = errors.New("interview is not open for editing")

	// ErrUnknownAction indicates an action type the reducer does not handle.
	ErrUnknownAction = errors.New("unknown editor action")
)
