package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockRepo struct {
	mu   sync.Mutex
	last map[string]time.Time // "senderID|address" -> sent_at
}

func newMockRepo() *mockRepo {
	return &mockRepo{last: make(map[string]time.Time)}
}

func (m *mockRepo) record(senderID, address string, sentAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[senderID+"|"+address] = sentAt
}

func (m *mockRepo) LastSentAt(_ context.Context, senderID, address string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.last[senderID+"|"+address]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

type mockResolver struct {
	known map[string]bool
}

func (m *mockResolver) AddressExists(_ context.Context, address string) (bool, error) {
	return m.known[address], nil
}

func newTestService(repo *mockRepo, now time.Time) *Service {
	resolver := &mockResolver{known: map[string]bool{"wren-hollow": true}}
	svc := NewService(repo, resolver, time.Hour, 2*time.Minute)
	return svc.WithClock(func() time.Time { return now })
}

func TestScheduleBaseline(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := newTestService(newMockRepo(), now)

	sched, err := svc.Schedule(context.Background(), "sender-1", "wren-hollow", nil)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if !sched.SentAt.Equal(now) {
		t.Errorf("SentAt = %v, want %v", sched.SentAt, now)
	}
	if want := now.Add(2 * time.Minute); !sched.AvailableAt.Equal(want) {
		t.Errorf("AvailableAt = %v, want %v", sched.AvailableAt, want)
	}
	if sched.AvailableAt.Before(sched.SentAt) {
		t.Error("AvailableAt must never precede SentAt")
	}
}

func TestScheduleRecipientNotFound(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := newTestService(newMockRepo(), now)

	_, err := svc.Schedule(context.Background(), "sender-1", "nobody-home", nil)
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("error = %v, want ErrRecipientNotFound", err)
	}
}

func TestScheduleFloor(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := newTestService(newMockRepo(), now)
	ctx := context.Background()

	// A requestedAt in the past is ignored: never accelerates delivery.
	past := now.Add(-time.Hour)
	sched, err := svc.Schedule(ctx, "sender-1", "wren-hollow", &past)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if want := now.Add(2 * time.Minute); !sched.AvailableAt.Equal(want) {
		t.Errorf("AvailableAt = %v, want baseline %v", sched.AvailableAt, want)
	}

	// A requestedAt inside the baseline window is also ignored.
	soon := now.Add(time.Minute)
	sched, err = svc.Schedule(ctx, "sender-1", "wren-hollow", &soon)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if want := now.Add(2 * time.Minute); !sched.AvailableAt.Equal(want) {
		t.Errorf("AvailableAt = %v, want baseline %v", sched.AvailableAt, want)
	}

	// A requestedAt beyond the baseline is honored.
	later := now.Add(3 * time.Hour)
	sched, err = svc.Schedule(ctx, "sender-1", "wren-hollow", &later)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if !sched.AvailableAt.Equal(later) {
		t.Errorf("AvailableAt = %v, want requested %v", sched.AvailableAt, later)
	}
}

func TestScheduleCooldown(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.record("sender-1", "wren-hollow", start)
	ctx := context.Background()

	// 30 minutes into a 60-minute cooldown: rejected, with remaining wait.
	svc := newTestService(repo, start.Add(30*time.Minute))
	_, err := svc.Schedule(ctx, "sender-1", "wren-hollow", nil)
	ce, ok := IsCooldown(err)
	if !ok {
		t.Fatalf("error = %v, want CooldownError", err)
	}
	if ce.Remaining != 30*time.Minute {
		t.Errorf("Remaining = %v, want 30m", ce.Remaining)
	}

	// 61 minutes in: accepted.
	svc = newTestService(repo, start.Add(61*time.Minute))
	if _, err := svc.Schedule(ctx, "sender-1", "wren-hollow", nil); err != nil {
		t.Errorf("Schedule() after cooldown error: %v", err)
	}

	// A different sender to the same address is unaffected.
	svc = newTestService(repo, start.Add(30*time.Minute))
	if _, err := svc.Schedule(ctx, "sender-2", "wren-hollow", nil); err != nil {
		t.Errorf("Schedule() for other sender error: %v", err)
	}
}

func TestScheduleCooldownDisabled(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.record("sender-1", "wren-hollow", start)

	resolver := &mockResolver{known: map[string]bool{"wren-hollow": true}}
	svc := NewService(repo, resolver, 0, 2*time.Minute).
		WithClock(func() time.Time { return start.Add(time.Second) })

	if _, err := svc.Schedule(context.Background(), "sender-1", "wren-hollow", nil); err != nil {
		t.Errorf("Schedule() with zero cooldown error: %v", err)
	}
}
