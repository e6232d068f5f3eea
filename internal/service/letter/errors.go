package letter

import "errors"

// Sentinel errors for the letter lifecycle.
var (
	// ErrNotFound means no letter exists with the given id.
	ErrNotFound = errors.New("letter not found")

	// ErrInvalidState means the letter exists but is already in a terminal
	// status. A recipient's decision is never overwritten: resolving twice
	// fails rather than silently succeeding.
	ErrInvalidState = errors.New("letter already resolved")
)
