package inventory

import (
	"context"

	"github.com/featherpost/courier/internal/domain"
)

// Repository defines the data access contract for the ledger.
// Implementations must be safe for concurrent use, and the Purchase*
// operations must be atomic: the funds check and the debit happen as one
// conditional mutation, never as a separate read and write.
type Repository interface {
	// GetAccount returns the account with inventory loaded.
	// Returns ErrNotFound if absent.
	GetAccount(ctx context.Context, id string) (*domain.Account, error)

	// GetStamp returns a stamp catalog item. Returns ErrNotFound if absent.
	GetStamp(ctx context.Context, id string) (*domain.Stamp, error)

	// GetEnvelope returns an envelope catalog item. Returns ErrNotFound if absent.
	GetEnvelope(ctx context.Context, id string) (*domain.Envelope, error)

	// PurchaseStamp debits totalPrice gold and adds quantity stamps in one
	// atomic operation. Returns InsufficientFundsError if the conditional
	// debit does not apply.
	PurchaseStamp(ctx context.Context, accountID, stampID string, quantity, totalPrice int) error

	// PurchaseEnvelope debits price gold and adds the envelope in one atomic
	// operation. Returns ErrAlreadyOwned if the envelope is in the set,
	// InsufficientFundsError if the debit does not apply.
	PurchaseEnvelope(ctx context.Context, accountID, envelopeID string, price int) error

	// ConsumeStamps decrements each listed stamp by one in a single atomic
	// operation. Returns ErrOutOfStock if any quantity would go negative.
	ConsumeStamps(ctx context.Context, accountID string, stampIDs []string) error

	// GrantStamp adds quantity stamps with no gold movement.
	GrantStamp(ctx context.Context, accountID, stampID string, quantity int) error

	// GrantEnvelope adds the envelope with no gold movement. Idempotent.
	GrantEnvelope(ctx context.Context, accountID, envelopeID string) error
}
