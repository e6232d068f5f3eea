// Package directory implements the address directory service.
//
// An address is a unique human-chosen string identifying an account as a
// message destination. Addresses are capability tokens, not secured
// identities: whoever knows one can write to it. Uniqueness is enforced by
// the storage layer with a hard constraint, never by a check-then-insert in
// application code, because concurrent registrations of the same address
// must not both succeed.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports net/http
// or database/sql directly.
package directory
