package directory

import "errors"

// Sentinel errors for the directory service layer.
var (
	// ErrNotFound means no account holds the requested address or id.
	ErrNotFound = errors.New("address not found")

	// ErrAddressClaimed means the address is already held by some account.
	// Repositories map their storage-level uniqueness violation to this.
	ErrAddressClaimed = errors.New("address already claimed")
)
