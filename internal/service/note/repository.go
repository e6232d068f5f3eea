package note

import (
	"context"

	"github.com/featherpost/courier/internal/domain"
)

// Repository is the persistence boundary for notes.
type Repository interface {
	// Create inserts a new note.
	Create(ctx context.Context, n *domain.Note) error

	// Get returns a note by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Note, error)

	// ListByAccount returns the account's notes, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]domain.Note, error)

	// Update replaces the note's content, color, and updated_at by ID.
	// Updating a missing note returns ErrNotFound.
	Update(ctx context.Context, n *domain.Note) error

	// Delete removes a note by ID. Deleting a missing note returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error
}
