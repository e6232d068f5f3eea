package draft

import (
	"context"

	"github.com/featherpost/courier/internal/domain"
)

// Repository is the persistence boundary for drafts.
type Repository interface {
	// Upsert inserts the draft or replaces it by ID.
	Upsert(ctx context.Context, d *domain.Draft) error

	// Get returns a draft by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Draft, error)

	// ListBySender returns the account's drafts, most recently updated first.
	ListBySender(ctx context.Context, senderID string) ([]domain.Draft, error)

	// Delete removes a draft by ID. Deleting a missing draft returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error
}
