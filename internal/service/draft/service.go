package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/google/uuid"
)

// Submitter sends a finished composition. Implemented by the letter service.
type Submitter interface {
	Submit(ctx context.Context, in letter.SubmitInput) (*domain.Letter, error)
}

// Service manages draft compositions. It is safe for concurrent use.
type Service struct {
	repo      Repository
	submitter Submitter
	now       func() time.Time
}

// NewService creates a draft service.
func NewService(repo Repository, submitter Submitter) *Service {
	return &Service{
		repo:      repo,
		submitter: submitter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SaveInput is a draft save request. An empty ID creates a new draft; a set
// ID updates the caller's existing draft in place.
type SaveInput struct {
	ID               string     `json:"id,omitempty"`
	SenderID         string     `json:"sender_id"`
	Content          string     `json:"content"`
	Pages            []string   `json:"pages,omitempty"`
	RecipientAddress string     `json:"recipient_address,omitempty"`
	StampIDs         []string   `json:"stamp_ids,omitempty"`
	EnvelopeID       string     `json:"envelope_id,omitempty"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
}

// Save upserts a draft. Drafts skip letter validation entirely; the only
// hard requirements are an owner and, when updating, that the draft belongs
// to the caller.
func (s *Service) Save(ctx context.Context, in SaveInput) (*domain.Draft, error) {
	if in.SenderID == "" {
		return nil, domain.ValidationError{Field: "sender_id", Reason: "is required"}
	}

	content := in.Content
	if len(in.Pages) > 0 {
		if in.Content != "" {
			return nil, domain.ValidationError{Field: "content", Reason: "provide either content or pages, not both"}
		}
		joined, err := domain.JoinPages(in.Pages)
		if err != nil {
			return nil, err
		}
		content = joined
	}

	d := &domain.Draft{
		ID:               in.ID,
		SenderID:         in.SenderID,
		Content:          content,
		RecipientAddress: in.RecipientAddress,
		StampIDs:         in.StampIDs,
		EnvelopeID:       in.EnvelopeID,
		ScheduledAt:      in.ScheduledAt,
		UpdatedAt:        s.now(),
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	} else {
		if _, err := s.owned(ctx, d.ID, d.SenderID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}

// Get returns the caller's draft, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id, senderID string) (*domain.Draft, error) {
	return s.owned(ctx, id, senderID)
}

// List returns the caller's drafts, most recently updated first.
func (s *Service) List(ctx context.Context, senderID string) ([]domain.Draft, error) {
	return s.repo.ListBySender(ctx, senderID)
}

// Discard deletes the caller's draft.
func (s *Service) Discard(ctx context.Context, id, senderID string) error {
	if _, err := s.owned(ctx, id, senderID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Promote submits the draft as a letter and, on success, deletes the draft.
// Submission enforces the full letter rules; a draft that fails them stays
// saved so the author can keep editing.
func (s *Service) Promote(ctx context.Context, id, senderID string) (*domain.Letter, error) {
	d, err := s.owned(ctx, id, senderID)
	if err != nil {
		return nil, err
	}

	l, err := s.submitter.Submit(ctx, letter.SubmitInput{
		SenderID:         d.SenderID,
		RecipientAddress: d.RecipientAddress,
		Content:          d.Content,
		StampIDs:         d.StampIDs,
		EnvelopeID:       d.EnvelopeID,
		ScheduledAt:      d.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}

	// The letter is already committed; a failed cleanup leaves a stale
	// draft, not a lost letter.
	if err := s.repo.Delete(ctx, id); err != nil {
		return l, fmt.Errorf("delete promoted draft: %w", err)
	}
	return l, nil
}

func (s *Service) owned(ctx context.Context, id, senderID string) (*domain.Draft, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.SenderID != senderID {
		return nil, ErrNotFound
	}
	return d, nil
}
