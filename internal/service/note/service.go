package note

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/google/uuid"
)

// AccountLookup verifies the note's owner exists. Implemented by the
// directory service.
type AccountLookup interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
}

// Service manages sticky notes. It is safe for concurrent use.
type Service struct {
	repo     Repository
	accounts AccountLookup
	now      func() time.Time
}

// NewService creates a note service.
func NewService(repo Repository, accounts AccountLookup) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create pins a new note for the account. Color defaults when omitted.
func (s *Service) Create(ctx context.Context, accountID, content, color string) (*domain.Note, error) {
	if accountID == "" {
		return nil, domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.ValidationError{Field: "content", Reason: "is required"}
	}
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	if color == "" {
		color = domain.DefaultNoteColor
	}

	now := s.now()
	n := &domain.Note{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Content:   content,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

// List returns the account's notes, newest first.
func (s *Service) List(ctx context.Context, accountID string) ([]domain.Note, error) {
	if accountID == "" {
		return nil, domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	return s.repo.ListByAccount(ctx, accountID)
}

// Update replaces the note's content and color.
func (s *Service) Update(ctx context.Context, id, content, color string) (*domain.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ValidationError{Field: "content", Reason: "is required"}
	}

	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Content = content
	if color != "" {
		n.Color = color
	}
	n.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

// Delete removes the note.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
