// Package postgres implements the service repository contracts against
// PostgreSQL using database/sql and lib/pq.
//
// Invariants the services rely on live here as SQL, not as Go checks:
// address uniqueness is the UNIQUE constraint on account_addresses, gold
// debits are conditional UPDATEs that check the balance in the same
// statement, and letter resolution is a conditional UPDATE keyed on the
// current status. See migrations/ for the full DDL.
package postgres
