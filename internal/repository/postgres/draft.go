package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/draft"
	"github.com/lib/pq"
)

// DraftRepo implements draft.Repository against PostgreSQL.
type DraftRepo struct{ db *sql.DB }

// NewDraftRepo creates a Postgres-backed draft repository.
func NewDraftRepo(db *sql.DB) *DraftRepo { return &DraftRepo{db: db} }

func (r *DraftRepo) Upsert(ctx context.Context, d *domain.Draft) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (id, sender_id, content, recipient_address, stamp_ids, envelope_id, scheduled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			content = $3, recipient_address = $4, stamp_ids = $5,
			envelope_id = $6, scheduled_at = $7, updated_at = $8
	`, d.ID, d.SenderID, d.Content, d.RecipientAddress, pq.Array(d.StampIDs), d.EnvelopeID, d.ScheduledAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

func (r *DraftRepo) Get(ctx context.Context, id string) (*domain.Draft, error) {
	var d domain.Draft
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sender_id, content, recipient_address, stamp_ids, envelope_id, scheduled_at, updated_at
		FROM drafts WHERE id = $1
	`, id).Scan(&d.ID, &d.SenderID, &d.Content, &d.RecipientAddress, pq.Array(&d.StampIDs), &d.EnvelopeID, &d.ScheduledAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return &d, nil
}

func (r *DraftRepo) ListBySender(ctx context.Context, senderID string) ([]domain.Draft, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, content, recipient_address, stamp_ids, envelope_id, scheduled_at, updated_at
		FROM drafts WHERE sender_id = $1
		ORDER BY updated_at DESC
	`, senderID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var out []domain.Draft
	for rows.Next() {
		var d domain.Draft
		if err := rows.Scan(&d.ID, &d.SenderID, &d.Content, &d.RecipientAddress, pq.Array(&d.StampIDs), &d.EnvelopeID, &d.ScheduledAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return out, nil
}

func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return draft.ErrNotFound
	}
	return nil
}
