// Package catalog serves the shop's stamp and envelope listings.
//
// The catalog is small and nearly static, so reads go through an optional
// Redis cache with a short TTL. The cache is best effort: any cache failure
// falls through to the store and is logged, never surfaced.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	cacheTTL          = 5 * time.Minute
	stampsCacheKey    = "catalog:stamps"
	envelopesCacheKey = "catalog:envelopes"
)

// Repository is the persistence boundary for catalog entries. Ensure
// methods insert the entry if absent and leave an existing row untouched;
// catalog rows are immutable once seeded.
type Repository interface {
	EnsureStamp(ctx context.Context, s domain.Stamp) error
	EnsureEnvelope(ctx context.Context, e domain.Envelope) error
	ListStamps(ctx context.Context) ([]domain.Stamp, error)
	ListEnvelopes(ctx context.Context) ([]domain.Envelope, error)
}

// Service reads and seeds the shop catalog. It is safe for concurrent use.
type Service struct {
	repo  Repository
	cache *redis.Client
}

// NewService creates a catalog service. cache may be nil; reads then always
// hit the repository.
func NewService(repo Repository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

// Seed inserts any missing built-in catalog entries. Existing rows are never
// overwritten, so the seed is safe to run on every boot.
func (s *Service) Seed(ctx context.Context) error {
	for _, stamp := range domain.DefaultStamps {
		if err := s.repo.EnsureStamp(ctx, stamp); err != nil {
			return fmt.Errorf("seed stamp %s: %w", stamp.ID, err)
		}
	}
	for _, env := range domain.DefaultEnvelopes {
		if err := s.repo.EnsureEnvelope(ctx, env); err != nil {
			return fmt.Errorf("seed envelope %s: %w", env.ID, err)
		}
	}
	s.invalidate(ctx)
	return nil
}

// Stamps returns the stamp catalog, cheapest first.
func (s *Service) Stamps(ctx context.Context) ([]domain.Stamp, error) {
	var cached []domain.Stamp
	if s.cacheGet(ctx, stampsCacheKey, &cached) {
		return cached, nil
	}

	stamps, err := s.repo.ListStamps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stamps: %w", err)
	}
	sort.Slice(stamps, func(i, j int) bool {
		if stamps[i].Price != stamps[j].Price {
			return stamps[i].Price < stamps[j].Price
		}
		return stamps[i].ID < stamps[j].ID
	})

	s.cacheSet(ctx, stampsCacheKey, stamps)
	return stamps, nil
}

// Envelopes returns the envelope catalog, cheapest first.
func (s *Service) Envelopes(ctx context.Context) ([]domain.Envelope, error) {
	var cached []domain.Envelope
	if s.cacheGet(ctx, envelopesCacheKey, &cached) {
		return cached, nil
	}

	envelopes, err := s.repo.ListEnvelopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}
	sort.Slice(envelopes, func(i, j int) bool {
		if envelopes[i].Price != envelopes[j].Price {
			return envelopes[i].Price < envelopes[j].Price
		}
		return envelopes[i].ID < envelopes[j].ID
	})

	s.cacheSet(ctx, envelopesCacheKey, envelopes)
	return envelopes, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("catalog cache read failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("catalog cache entry corrupt", "key", key, "err", err)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		logger.Warn("catalog cache write failed", "key", key, "err", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, stampsCacheKey, envelopesCacheKey).Err(); err != nil {
		logger.Warn("catalog cache invalidation failed", "err", err)
	}
}
