package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/featherpost/courier/internal/domain"
)

// CatalogRepo implements catalog.Repository against PostgreSQL.
type CatalogRepo struct{ db *sql.DB }

// NewCatalogRepo creates a Postgres-backed catalog repository.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// EnsureStamp inserts the stamp if absent. Catalog rows are immutable once
// seeded, so a conflicting insert is a no-op rather than an overwrite.
func (r *CatalogRepo) EnsureStamp(ctx context.Context, s domain.Stamp) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stamps (id, name, icon, color, price, is_default, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.Name, s.Icon, s.Color, s.Price, s.IsDefault, s.Description)
	if err != nil {
		return fmt.Errorf("ensure stamp: %w", err)
	}
	return nil
}

// EnsureEnvelope inserts the envelope if absent.
func (r *CatalogRepo) EnsureEnvelope(ctx context.Context, e domain.Envelope) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO envelopes (id, name, price, is_default, style_class, layout, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.Name, e.Price, e.IsDefault, e.StyleClass, e.Layout, e.Description)
	if err != nil {
		return fmt.Errorf("ensure envelope: %w", err)
	}
	return nil
}

func (r *CatalogRepo) ListStamps(ctx context.Context) ([]domain.Stamp, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, icon, color, price, is_default, description
		FROM stamps ORDER BY price, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list stamps: %w", err)
	}
	defer rows.Close()

	var out []domain.Stamp
	for rows.Next() {
		var s domain.Stamp
		if err := rows.Scan(&s.ID, &s.Name, &s.Icon, &s.Color, &s.Price, &s.IsDefault, &s.Description); err != nil {
			return nil, fmt.Errorf("scan stamp: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) ListEnvelopes(ctx context.Context) ([]domain.Envelope, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, is_default, style_class, layout, description
		FROM envelopes ORDER BY price, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}
	defer rows.Close()

	var out []domain.Envelope
	for rows.Next() {
		var e domain.Envelope
		if err := rows.Scan(&e.ID, &e.Name, &e.Price, &e.IsDefault, &e.StyleClass, &e.Layout, &e.Description); err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
