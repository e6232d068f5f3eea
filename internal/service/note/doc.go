// Package note manages the sticky notes on an account's desk.
//
// Notes are free-form scratch entries with a display color, listed newest
// first. The only rules are an existing owner and non-empty content; there
// is no lifecycle and no interaction with letters or the economy.
package note
