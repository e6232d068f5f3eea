package directory

import (
	"context"

	"github.com/featherpost/courier/internal/domain"
)

// Repository defines the data access contract for accounts and addresses.
// Implementations must be safe for concurrent use.
type Repository interface {
	// CreateAccount inserts a new account together with its first address.
	// Returns ErrAddressClaimed if the address uniqueness constraint is
	// violated; the constraint must live in the storage layer.
	CreateAccount(ctx context.Context, acct *domain.Account) error

	// AddAddress attaches an additional address to an existing account.
	// Returns ErrNotFound for an unknown account and ErrAddressClaimed on a
	// uniqueness violation.
	AddAddress(ctx context.Context, accountID string, addr domain.AccountAddress) error

	// GetByAddress returns the account holding the address. Returns
	// ErrNotFound if no account holds it.
	GetByAddress(ctx context.Context, address string) (*domain.Account, error)

	// GetByID returns an account by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}
