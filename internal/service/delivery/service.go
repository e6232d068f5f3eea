package delivery

import (
	"context"
	"fmt"
	"time"
)

// Schedule is the scheduler's output: the timestamps the letter is stamped
// with at submission.
type Schedule struct {
	SentAt      time.Time `json:"sent_at"`
	AvailableAt time.Time `json:"available_at"`
}

// Service computes delivery schedules and enforces cooldowns. It is safe for
// concurrent use.
type Service struct {
	repo     Repository
	resolver AddressResolver
	cooldown time.Duration
	delay    time.Duration
	now      func() time.Time
}

// NewService creates a delivery scheduler.
//
// cooldown is the minimum interval between two letters from the same sender
// to the same recipient address; delay is the minimum interval between
// submission and visibility.
func NewService(repo Repository, resolver AddressResolver, cooldown, delay time.Duration) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		cooldown: cooldown,
		delay:    delay,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the scheduler's clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Compute applies the scheduling rules given a resolved "now":
//
//	baseline = now + delay
//	availableAt = max(baseline, requestedAt)
//
// A requestedAt in the past or within the baseline window has no effect; an
// explicit schedule can postpone delivery but never accelerate it.
func (s *Service) Compute(now time.Time, requestedAt *time.Time) Schedule {
	availableAt := now.Add(s.delay)
	if requestedAt != nil && requestedAt.After(availableAt) {
		availableAt = requestedAt.UTC()
	}
	return Schedule{SentAt: now, AvailableAt: availableAt}
}

// Schedule validates the recipient, enforces the cooldown, and computes the
// delivery schedule for a new letter.
//
// Fails with ErrRecipientNotFound if the address is unknown, or with
// CooldownError (carrying the remaining wait) if the sender wrote to this
// address too recently.
func (s *Service) Schedule(ctx context.Context, senderID, recipientAddress string, requestedAt *time.Time) (Schedule, error) {
	exists, err := s.resolver.AddressExists(ctx, recipientAddress)
	if err != nil {
		return Schedule{}, fmt.Errorf("resolve recipient: %w", err)
	}
	if !exists {
		return Schedule{}, ErrRecipientNotFound
	}

	now := s.now()

	if s.cooldown > 0 {
		lastSentAt, err := s.repo.LastSentAt(ctx, senderID, recipientAddress)
		if err != nil {
			return Schedule{}, fmt.Errorf("look up last letter: %w", err)
		}
		if lastSentAt != nil {
			cooldownEnd := lastSentAt.Add(s.cooldown)
			if now.Before(cooldownEnd) {
				return Schedule{}, CooldownError{Remaining: cooldownEnd.Sub(now)}
			}
		}
	}

	return s.Compute(now, requestedAt), nil
}
