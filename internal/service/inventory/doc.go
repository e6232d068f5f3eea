// Package inventory implements the stamp and envelope ledger.
//
// This is the single source of truth for gold movement. Both purchase paths
// share one shape: load account and catalog item, check preconditions,
// then atomically debit gold and credit the inventory entry. The
// funds-check-then-debit must be a single conditional update against the
// account record; two concurrent purchases must never jointly overdraw a
// balance that each saw as sufficient.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go.
package inventory
