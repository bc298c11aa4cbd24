package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	// UserTTLCap bounds per-user cache entries regardless of the base TTL.
	// Per-user data changes independently of the bulk refresh cycle.
	UserTTLCap = 900 * time.Second
)

// Store implements store.Cache on Redis. Bulk payload and timestamp are
// written in one pipeline so the pair expires together; reads absorb store
// failures into misses.
type Store struct {
	client  *redis.Client
	baseTTL time.Duration
	logger  logger.Logger
}

// NewStore creates a Redis-backed badge cache store.
func NewStore(client *redis.Client, baseTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		client:  client,
		baseTTL: baseTTL,
		logger:  log,
	}
}

// BulkPayload retrieves the cached dataset for a bulk source.
func (s *Store) BulkPayload(ctx context.Context, source string) ([]byte, bool) {
	data, err := s.client.Get(ctx, BulkKey(source)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read bulk payload, treating as miss",
				logger.String("source", source),
				logger.Error(err))
		}
		return nil, false
	}
	return data, true
}

// BulkTimestamp retrieves the last refresh time for a bulk source.
// Timestamps are stored as epoch-milliseconds strings.
func (s *Store) BulkTimestamp(ctx context.Context, source string) (time.Time, bool) {
	raw, err := s.client.Get(ctx, BulkTimestampKey(source)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read bulk timestamp, treating as miss",
				logger.String("source", source),
				logger.Error(err))
		}
		return time.Time{}, false
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("corrupt bulk timestamp, treating as miss",
			logger.String("source", source),
			logger.String("value", raw))
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// SetBulk writes the dataset and its timestamp as one pipeline. Both carry
// twice the base TTL so a temporarily-down source still serves stale data
// for one extra refresh cycle.
func (s *Store) SetBulk(ctx context.Context, source string, payload []byte, ts time.Time) error {
	ttl := s.baseTTL * 2
	pipe := s.client.Pipeline()
	pipe.Set(ctx, BulkKey(source), payload, ttl)
	pipe.Set(ctx, BulkTimestampKey(source), strconv.FormatInt(ts.UnixMilli(), 10), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bulk data for %s: %w", source, err)
	}
	return nil
}

// UserBadges retrieves a cached per-user result. A corrupted entry is
// treated as a miss so the caller falls back to a fresh fetch.
func (s *Store) UserBadges(ctx context.Context, source, userID string) ([]domain.Badge, bool) {
	data, err := s.client.Get(ctx, UserKey(source, userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read user badges, treating as miss",
				logger.String("source", source),
				logger.Error(err))
		}
		return nil, false
	}

	var badges []domain.Badge
	if err := json.Unmarshal(data, &badges); err != nil {
		s.logger.Warn("corrupt user badge cache entry, treating as miss",
			logger.String("source", source),
			logger.Error(err))
		return nil, false
	}
	return badges, true
}

// SetUserBadges caches a per-user result with a TTL of min(baseTTL, 900s).
func (s *Store) SetUserBadges(ctx context.Context, source, userID string, badges []domain.Badge) error {
	data, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("failed to marshal badges for %s: %w", source, err)
	}

	ttl := s.baseTTL
	if ttl > UserTTLCap {
		ttl = UserTTLCap
	}

	if err := s.client.Set(ctx, UserKey(source, userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save user badges for %s: %w", source, err)
	}
	return nil
}
