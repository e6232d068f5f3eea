package inventory

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inventory ledger.
var (
	// ErrNotFound means the account or catalog item does not exist.
	ErrNotFound = errors.New("account or item not found")

	// ErrAlreadyOwned means the envelope is already in the account's set.
	// Envelopes are unlocked at most once.
	ErrAlreadyOwned = errors.New("envelope already owned")

	// ErrOutOfStock means a stamp consumption exceeds the owned quantity.
	ErrOutOfStock = errors.New("not enough stamps in inventory")
)

// InsufficientFundsError reports a purchase the balance cannot cover. It
// carries the shortfall detail so the caller can act on it.
type InsufficientFundsError struct {
	Need int `json:"need"`
	Have int `json:"have"`
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("not enough gold: need %d, have %d", e.Need, e.Have)
}
