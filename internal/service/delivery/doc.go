// Package delivery implements the delivery scheduler.
//
// The scheduler computes the timestamp at which a submitted letter becomes
// visible to its recipient and enforces the per-sender/recipient cooldown.
// There is no background process that "delivers" anything: a letter becomes
// visible purely because a later read compares available_at to the clock.
//
// The cooldown keys on (sender, recipient address), not on the resolved
// account. Addresses are never released or reclaimed, so the two are
// equivalent today.
package delivery
