package draft

import "errors"

// ErrNotFound is returned when a draft does not exist, or exists but belongs
// to a different account.
var ErrNotFound = errors.New("draft not found")
