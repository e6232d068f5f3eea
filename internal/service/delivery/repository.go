package delivery

import (
	"context"
	"time"
)

// Repository defines the recency lookup the scheduler needs.
type Repository interface {
	// LastSentAt returns the sent_at of the most recent letter from the
	// sender to the recipient address, or nil if none exists.
	LastSentAt(ctx context.Context, senderID, recipientAddress string) (*time.Time, error)
}

// AddressResolver reports whether an address exists. Implemented by the
// directory service.
type AddressResolver interface {
	AddressExists(ctx context.Context, address string) (bool, error)
}
