package note

import "errors"

// ErrNotFound is returned when a note does not exist.
var ErrNotFound = errors.New("note not found")
