// Package draft manages unsent letter compositions.
//
// A draft is a scratch copy of a letter: none of the letter submission rules
// apply to it, so a draft may be shorter than the minimum letter length,
// address nobody, or reference stamps the author no longer owns. Rules are
// enforced once, at promotion, when the draft is handed to the letter
// service and deleted on success.
//
// Drafts are private to their author. Operations against another account's
// draft report ErrNotFound rather than revealing that the draft exists.
package draft
