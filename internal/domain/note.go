package domain

import "time"

// DefaultNoteColor is used when a note is created without a color.
const DefaultNoteColor = "yellow"

// Note is a sticky note pinned to the account's desk. Notes are private
// scratch space, unrelated to correspondence: free-form content with a
// display color.
type Note struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"account_id" db:"account_id"`
	Content   string    `json:"content" db:"content"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
