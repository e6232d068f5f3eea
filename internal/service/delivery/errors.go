package delivery

import (
	"errors"
	"fmt"
	"time"
)

// ErrRecipientNotFound means the recipient address does not exist.
var ErrRecipientNotFound = errors.New("recipient address does not exist")

// CooldownError is a recoverable, user-facing condition: the sender must
// wait before writing to this address again. It carries the remaining wait
// so the caller can display it.
type CooldownError struct {
	Remaining time.Duration
}

func (e CooldownError) Error() string {
	return fmt.Sprintf("cooldown active: wait %s before writing to this address again", e.Remaining.Round(time.Second))
}

// IsCooldown reports whether err is a CooldownError and returns it.
func IsCooldown(err error) (CooldownError, bool) {
	var ce CooldownError
	ok := errors.As(err, &ce)
	return ce, ok
}
