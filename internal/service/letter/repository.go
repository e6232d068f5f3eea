package letter

import (
	"context"
	"time"

	"github.com/featherpost/courier/internal/domain"
)

// Repository defines the data access contract for letters.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts a new letter.
	Create(ctx context.Context, l *domain.Letter) error

	// Get returns a letter by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Letter, error)

	// ListIncoming returns letters addressed to address with status
	// "sending" and available_at <= now, newest available first. A letter
	// with available_at > now must never appear here.
	ListIncoming(ctx context.Context, address string, now time.Time) ([]domain.Letter, error)

	// ListPending returns the complement: available_at > now, soonest first.
	ListPending(ctx context.Context, address string, now time.Time) ([]domain.Letter, error)

	// ListByStatus returns letters addressed to address in a terminal
	// status, most recently available first.
	ListByStatus(ctx context.Context, address string, status domain.LetterStatus) ([]domain.Letter, error)

	// ListBySender returns all letters sent by the account, newest first.
	ListBySender(ctx context.Context, senderID string) ([]domain.Letter, error)

	// Resolve transitions a letter from "sending" to a terminal status in a
	// single conditional update. Returns ErrNotFound for an unknown id and
	// ErrInvalidState if the letter is no longer in "sending".
	Resolve(ctx context.Context, id string, status domain.LetterStatus, tags []string, resolvedAt time.Time) (*domain.Letter, error)
}
