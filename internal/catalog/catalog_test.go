package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/featherpost/courier/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mu        sync.Mutex
	stamps    map[string]domain.Stamp
	envelopes map[string]domain.Envelope
	listCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		stamps:    make(map[string]domain.Stamp),
		envelopes: make(map[string]domain.Envelope),
	}
}

func (m *mockRepo) EnsureStamp(_ context.Context, s domain.Stamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stamps[s.ID]; !ok {
		m.stamps[s.ID] = s
	}
	return nil
}

func (m *mockRepo) EnsureEnvelope(_ context.Context, e domain.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.envelopes[e.ID]; !ok {
		m.envelopes[e.ID] = e
	}
	return nil
}

func (m *mockRepo) ListStamps(_ context.Context) ([]domain.Stamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	out := make([]domain.Stamp, 0, len(m.stamps))
	for _, s := range m.stamps {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockRepo) ListEnvelopes(_ context.Context) ([]domain.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Envelope, 0, len(m.envelopes))
	for _, e := range m.envelopes {
		out = append(out, e)
	}
	return out, nil
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.Seed(context.Background()))
	require.NoError(t, svc.Seed(context.Background()))

	assert.Len(t, repo.stamps, len(domain.DefaultStamps))
	assert.Len(t, repo.envelopes, len(domain.DefaultEnvelopes))
}

func TestSeedPreservesExistingRows(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	// A row already in the store, even one diverged from the built-in
	// defaults, is never overwritten by a later seed.
	repo.stamps["golden-sol"] = domain.Stamp{ID: "golden-sol", Name: "Golden Sol", Price: 999}
	require.NoError(t, svc.Seed(context.Background()))

	stamps, err := svc.Stamps(context.Background())
	require.NoError(t, err)
	for _, s := range stamps {
		if s.ID == "golden-sol" {
			assert.Equal(t, 999, s.Price, "seed re-wrote an existing row")
		}
	}
}

func TestStampsSortedByPrice(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	require.NoError(t, svc.Seed(context.Background()))

	stamps, err := svc.Stamps(context.Background())
	require.NoError(t, err)
	require.Len(t, stamps, len(domain.DefaultStamps))
	for i := 1; i < len(stamps); i++ {
		assert.LessOrEqual(t, stamps[i-1].Price, stamps[i].Price)
	}
}

func TestEnvelopesSortedByPrice(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	require.NoError(t, svc.Seed(context.Background()))

	envelopes, err := svc.Envelopes(context.Background())
	require.NoError(t, err)
	require.Len(t, envelopes, len(domain.DefaultEnvelopes))
	for i := 1; i < len(envelopes); i++ {
		assert.LessOrEqual(t, envelopes[i-1].Price, envelopes[i].Price)
	}
}

func TestCachedReads(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	repo := newMockRepo()
	svc := NewService(repo, cache)
	require.NoError(t, svc.Seed(context.Background()))

	first, err := svc.Stamps(context.Background())
	require.NoError(t, err)
	second, err := svc.Stamps(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls, "second read served from cache")

	// Seeding again drops the cache, so the next read hits the store.
	require.NoError(t, svc.Seed(context.Background()))
	_, err = svc.Stamps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	repo := newMockRepo()
	svc := NewService(repo, cache)
	require.NoError(t, svc.Seed(context.Background()))

	_, err := svc.Stamps(context.Background())
	require.NoError(t, err)

	mr.FastForward(cacheTTL + time.Second)

	_, err = svc.Stamps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls, "expired cache falls through to the store")
}
