package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/note"
)

// NoteRepo implements note.Repository against PostgreSQL.
type NoteRepo struct{ db *sql.DB }

// NewNoteRepo creates a Postgres-backed note repository.
func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

func (r *NoteRepo) Create(ctx context.Context, n *domain.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, account_id, content, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.AccountID, n.Content, n.Color, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NoteRepo) Get(ctx context.Context, id string) (*domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, content, color, created_at, updated_at
		FROM notes WHERE id = $1
	`, id).Scan(&n.ID, &n.AccountID, &n.Content, &n.Color, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, note.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load note: %w", err)
	}
	return &n, nil
}

func (r *NoteRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, content, color, created_at, updated_at
		FROM notes WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Content, &n.Color, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return out, nil
}

func (r *NoteRepo) Update(ctx context.Context, n *domain.Note) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notes SET content = $2, color = $3, updated_at = $4 WHERE id = $1
	`, n.ID, n.Content, n.Color, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return note.ErrNotFound
	}
	return nil
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return note.ErrNotFound
	}
	return nil
}
