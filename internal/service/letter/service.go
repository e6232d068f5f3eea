package letter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/pkg/logger"
	"github.com/featherpost/courier/internal/pkg/sendlock"
	"github.com/featherpost/courier/internal/service/delivery"
	"github.com/google/uuid"
)

// Scheduler computes delivery timing. Implemented by the delivery service.
type Scheduler interface {
	Schedule(ctx context.Context, senderID, recipientAddress string, requestedAt *time.Time) (delivery.Schedule, error)
}

// Ledger consumes stamp inventory. Implemented by the inventory service.
type Ledger interface {
	ConsumeStamps(ctx context.Context, accountID string, stampIDs []string) error
}

// AccountLookup loads sender accounts for ownership checks. Implemented by
// the directory service.
type AccountLookup interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
}

// Renderer is an injectable content transform producing a rendered HTML
// form of the letter body. A nil Renderer disables rendering.
type Renderer interface {
	Render(content string) (string, error)
}

// Service implements the letter lifecycle. It is safe for concurrent use.
type Service struct {
	repo      Repository
	scheduler Scheduler
	ledger    Ledger
	accounts  AccountLookup
	renderer  Renderer
	locks     sendlock.Factory
	now       func() time.Time
}

// NewService creates a letter lifecycle service. renderer and locks may be
// nil: rendering is optional, and without a lock factory the
// cooldown-check-then-insert window is unguarded (a documented best-effort
// race).
func NewService(repo Repository, scheduler Scheduler, ledger Ledger, accounts AccountLookup, renderer Renderer, locks sendlock.Factory) *Service {
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		ledger:    ledger,
		accounts:  accounts,
		renderer:  renderer,
		locks:     locks,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitInput is a letter submission request. Content may be supplied as a
// single blob (already delimited) or as explicit pages; not both.
type SubmitInput struct {
	SenderID         string     `json:"sender_id"`
	RecipientAddress string     `json:"recipient_address"`
	Content          string     `json:"content"`
	Pages            []string   `json:"pages,omitempty"`
	StampIDs         []string   `json:"stamp_ids,omitempty"`
	EnvelopeID       string     `json:"envelope_id,omitempty"`
	Images           []string   `json:"images,omitempty"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
}

func (in *SubmitInput) content() (string, error) {
	if len(in.Pages) > 0 {
		if in.Content != "" {
			return "", domain.ValidationError{Field: "content", Reason: "provide either content or pages, not both"}
		}
		return domain.JoinPages(in.Pages)
	}
	return in.Content, nil
}

// Submit accepts a letter for delivery: validates the composition, consumes
// the selected stamps, delegates timing to the scheduler, and persists the
// letter in status "sending".
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.Letter, error) {
	content, err := in.content()
	if err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if err := domain.ValidateAddress(in.RecipientAddress); err != nil {
		return nil, err
	}
	if len(in.StampIDs) > domain.MaxStamps {
		return nil, domain.ValidationError{Field: "stamp_ids", Reason: fmt.Sprintf("at most %d stamps", domain.MaxStamps)}
	}
	if err := validateImages(in.Images); err != nil {
		return nil, err
	}

	sender, err := s.accounts.Get(ctx, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("load sender: %w", err)
	}
	if in.EnvelopeID != "" && !sender.OwnsEnvelope(in.EnvelopeID) {
		return nil, domain.ValidationError{Field: "envelope_id", Reason: "envelope is not in your collection"}
	}

	// Guard the cooldown-check-then-insert window per (sender, recipient)
	// pair. Advisory only: with no lock backend the narrow race stands.
	if s.locks != nil {
		lock := s.locks(in.SenderID + ":" + in.RecipientAddress)
		acquired, lockErr := lock.Acquire(ctx)
		switch {
		case lockErr != nil:
			logger.Warn("send lock unavailable, proceeding unlocked", "err", lockErr)
		case !acquired:
			// Another letter to this address is mid-submission; the one that
			// wins starts the cooldown.
			return nil, delivery.CooldownError{Remaining: 0}
		default:
			defer func() {
				if err := lock.Release(ctx); err != nil {
					logger.Warn("send lock release failed", "err", err)
				}
			}()
		}
	}

	sched, err := s.scheduler.Schedule(ctx, in.SenderID, in.RecipientAddress, in.ScheduledAt)
	if err != nil {
		return nil, err
	}

	// The conditional decrement doubles as the ownership check: a selection
	// the sender does not hold fails here before anything is written.
	if err := s.ledger.ConsumeStamps(ctx, in.SenderID, in.StampIDs); err != nil {
		return nil, err
	}

	l := &domain.Letter{
		ID:               uuid.NewString(),
		SenderID:         in.SenderID,
		RecipientAddress: in.RecipientAddress,
		Content:          content,
		Status:           domain.LetterSending,
		SentAt:           sched.SentAt,
		AvailableAt:      sched.AvailableAt,
		ScheduledAt:      in.ScheduledAt,
		StampIDs:         in.StampIDs,
		EnvelopeID:       in.EnvelopeID,
		Images:           in.Images,
	}

	if s.renderer != nil {
		html, err := s.renderer.Render(content)
		if err != nil {
			return nil, fmt.Errorf("render letter: %w", err)
		}
		l.RenderedHTML = html
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("persist letter: %w", err)
	}
	return l, nil
}

// ListIncoming returns letters that have arrived for the address: status
// "sending" with available_at at or before now, newest available first.
func (s *Service) ListIncoming(ctx context.Context, address string, now time.Time) ([]domain.Letter, error) {
	return s.repo.ListIncoming(ctx, address, now)
}

// ListPending returns letters still in transit to the address, ordered by
// soonest arrival.
func (s *Service) ListPending(ctx context.Context, address string, now time.Time) ([]domain.Letter, error) {
	return s.repo.ListPending(ctx, address, now)
}

// ListArchived returns resolved letters for the address. status defaults to
// "saved"; "dropped" letters are retained and equally queryable.
func (s *Service) ListArchived(ctx context.Context, address string, status domain.LetterStatus) ([]domain.Letter, error) {
	if status == "" {
		status = domain.LetterSaved
	}
	if !status.IsTerminal() {
		return nil, domain.ValidationError{Field: "status", Reason: "must be saved or dropped"}
	}
	return s.repo.ListByStatus(ctx, address, status)
}

// ListSent returns every letter the account has sent, newest first.
func (s *Service) ListSent(ctx context.Context, senderID string) ([]domain.Letter, error) {
	return s.repo.ListBySender(ctx, senderID)
}

// Get returns a letter by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Letter, error) {
	return s.repo.Get(ctx, id)
}

// Resolve applies the recipient's one-shot decision: "saved" archives the
// letter with optional tags, "dropped" discards it. The transition is
// conditional on the letter still being in "sending"; a second call fails
// with ErrInvalidState so a decision is never overwritten.
func (s *Service) Resolve(ctx context.Context, id string, decision string, tags []string) (*domain.Letter, error) {
	var status domain.LetterStatus
	switch decision {
	case string(domain.LetterSaved):
		status = domain.LetterSaved
	case string(domain.LetterDropped):
		status = domain.LetterDropped
	default:
		return nil, domain.ValidationError{Field: "decision", Reason: "must be saved or dropped"}
	}

	if status == domain.LetterDropped {
		// Tags only mean anything on an archived letter.
		tags = nil
	}
	cleaned, err := cleanTags(tags)
	if err != nil {
		return nil, err
	}

	return s.repo.Resolve(ctx, id, status, cleaned, s.now())
}

func validateContent(content string) error {
	trimmed := strings.TrimSpace(strings.ReplaceAll(content, domain.PageDelimiter, " "))
	n := utf8.RuneCountInString(trimmed)
	if n < domain.MinContentLen {
		return domain.ValidationError{Field: "content", Reason: fmt.Sprintf("letter must be at least %d characters long", domain.MinContentLen)}
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLen {
		return domain.ValidationError{Field: "content", Reason: fmt.Sprintf("letter cannot exceed %d characters", domain.MaxContentLen)}
	}
	return nil
}

func validateImages(images []string) error {
	if len(images) > domain.MaxImages {
		return domain.ValidationError{Field: "images", Reason: fmt.Sprintf("at most %d images", domain.MaxImages)}
	}
	for _, raw := range images {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return domain.ValidationError{Field: "images", Reason: "images must be http(s) URLs"}
		}
	}
	return nil
}

func cleanTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	if len(tags) > domain.MaxTags {
		return nil, domain.ValidationError{Field: "tags", Reason: fmt.Sprintf("at most %d tags", domain.MaxTags)}
	}
	seen := make(map[string]bool, len(tags))
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		if utf8.RuneCountInString(tag) > domain.MaxTagLen {
			return nil, domain.ValidationError{Field: "tags", Reason: fmt.Sprintf("tags must be at most %d characters", domain.MaxTagLen)}
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}
	return cleaned, nil
}
