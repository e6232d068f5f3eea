package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/lib/pq"
)

// LetterRepo implements letter.Repository and delivery.Repository against
// PostgreSQL.
type LetterRepo struct{ db *sql.DB }

// NewLetterRepo creates a Postgres-backed letter repository.
func NewLetterRepo(db *sql.DB) *LetterRepo { return &LetterRepo{db: db} }

const letterColumns = `id, sender_id, recipient_address, content, rendered_html, status,
	sent_at, available_at, scheduled_at, stamp_ids, envelope_id, images, tags, resolved_at`

func scanLetter(row interface{ Scan(...any) error }) (*domain.Letter, error) {
	var l domain.Letter
	err := row.Scan(
		&l.ID, &l.SenderID, &l.RecipientAddress, &l.Content, &l.RenderedHTML, &l.Status,
		&l.SentAt, &l.AvailableAt, &l.ScheduledAt, pq.Array(&l.StampIDs), &l.EnvelopeID,
		pq.Array(&l.Images), pq.Array(&l.Tags), &l.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LetterRepo) Create(ctx context.Context, l *domain.Letter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO letters (id, sender_id, recipient_address, content, rendered_html, status,
			sent_at, available_at, scheduled_at, stamp_ids, envelope_id, images, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, l.ID, l.SenderID, l.RecipientAddress, l.Content, l.RenderedHTML, l.Status,
		l.SentAt, l.AvailableAt, l.ScheduledAt, pq.Array(l.StampIDs), l.EnvelopeID,
		pq.Array(l.Images), pq.Array(l.Tags))
	if err != nil {
		return fmt.Errorf("insert letter: %w", err)
	}
	return nil
}

func (r *LetterRepo) Get(ctx context.Context, id string) (*domain.Letter, error) {
	l, err := scanLetter(r.db.QueryRowContext(ctx,
		`SELECT `+letterColumns+` FROM letters WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, letter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load letter: %w", err)
	}
	return l, nil
}

func (r *LetterRepo) list(ctx context.Context, query string, args ...any) ([]domain.Letter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list letters: %w", err)
	}
	defer rows.Close()

	var out []domain.Letter
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan letter: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate letters: %w", err)
	}
	return out, nil
}

func (r *LetterRepo) ListIncoming(ctx context.Context, address string, now time.Time) ([]domain.Letter, error) {
	return r.list(ctx, `
		SELECT `+letterColumns+` FROM letters
		WHERE recipient_address = $1 AND status = 'sending' AND available_at <= $2
		ORDER BY available_at DESC
	`, address, now)
}

func (r *LetterRepo) ListPending(ctx context.Context, address string, now time.Time) ([]domain.Letter, error) {
	return r.list(ctx, `
		SELECT `+letterColumns+` FROM letters
		WHERE recipient_address = $1 AND status = 'sending' AND available_at > $2
		ORDER BY available_at ASC
	`, address, now)
}

func (r *LetterRepo) ListByStatus(ctx context.Context, address string, status domain.LetterStatus) ([]domain.Letter, error) {
	return r.list(ctx, `
		SELECT `+letterColumns+` FROM letters
		WHERE recipient_address = $1 AND status = $2
		ORDER BY available_at DESC
	`, address, status)
}

func (r *LetterRepo) ListBySender(ctx context.Context, senderID string) ([]domain.Letter, error) {
	return r.list(ctx, `
		SELECT `+letterColumns+` FROM letters
		WHERE sender_id = $1
		ORDER BY sent_at DESC
	`, senderID)
}

// Resolve transitions the letter out of "sending" with a conditional UPDATE.
// The status predicate makes the decision one-shot under any concurrency.
func (r *LetterRepo) Resolve(ctx context.Context, id string, status domain.LetterStatus, tags []string, resolvedAt time.Time) (*domain.Letter, error) {
	if tags == nil {
		tags = []string{}
	}
	l, err := scanLetter(r.db.QueryRowContext(ctx, `
		UPDATE letters SET status = $2, tags = $3, resolved_at = $4
		WHERE id = $1 AND status = 'sending'
		RETURNING `+letterColumns,
		id, status, pq.Array(tags), resolvedAt,
	))
	if err == sql.ErrNoRows {
		// Either the letter does not exist or it is already resolved.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM letters WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check letter: %w", err)
		}
		if !exists {
			return nil, letter.ErrNotFound
		}
		return nil, letter.ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("resolve letter: %w", err)
	}
	return l, nil
}

// LastSentAt implements the delivery scheduler's recency lookup.
func (r *LetterRepo) LastSentAt(ctx context.Context, senderID, recipientAddress string) (*time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT sent_at FROM letters
		WHERE sender_id = $1 AND recipient_address = $2
		ORDER BY sent_at DESC LIMIT 1
	`, senderID, recipientAddress).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last sent at: %w", err)
	}
	return &t, nil
}
