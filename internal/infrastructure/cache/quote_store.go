package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
)

const quoteKeyPrefix = "quote:"

// QuoteStore keeps issued quotes in Redis under their validity TTL. When the
// TTL lapses Redis drops the key, so an absent key is how expiry is observed.
type QuoteStore struct {
	redis  RedisClient
	logger *zap.Logger
}

// NewQuoteStore builds a quote store over the shared Redis client
func NewQuoteStore(redis RedisClient, logger *zap.Logger) *QuoteStore {
	return &QuoteStore{redis: redis, logger: logger}
}

// Save stores the quote for its validity window
func (s *QuoteStore) Save(ctx context.Context, q *entities.Quote, ttl time.Duration) error {
	if err := s.redis.Set(ctx, quoteKey(q.ID), q, ttl); err != nil {
		return fmt.Errorf("store quote %s: %w", q.ID, err)
	}
	return nil
}

// Get returns the quote, or nil when it expired or never existed
func (s *QuoteStore) Get(ctx context.Context, id uuid.UUID) (*entities.Quote, error) {
	val, err := s.redis.Client().Get(ctx, quoteKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", id, err)
	}

	var q entities.Quote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		return nil, fmt.Errorf("decode quote %s: %w", id, err)
	}
	return &q, nil
}

func quoteKey(id uuid.UUID) string {
	return quoteKeyPrefix + id.String()
}
