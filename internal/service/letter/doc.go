// Package letter implements the correspondence lifecycle.
//
// A letter moves through exactly one transition: from "sending" to a
// terminal status ("saved" or "dropped") chosen by the recipient. Whether a
// sending letter is visible is never stored; it is derived on every read by
// comparing available_at to the clock. Clients poll for newly arrived
// letters; the server pushes nothing.
//
// Submission delegates all timing to the delivery scheduler and all stamp
// consumption to the inventory ledger. The service depends only on the
// interfaces declared in repository.go.
package letter
