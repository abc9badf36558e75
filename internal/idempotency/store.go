package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderKey is the request header carrying the client's idempotency key.
const HeaderKey = "Idempotency-Key"

const pending = "pending"

// ErrInFlight is returned when a key is reserved by a request that has not finished.
var ErrInFlight = errors.New("request with this idempotency key is in progress")

// Store remembers which sale an idempotency key produced.
type Store interface {
	// Reserve claims key for orgID. When the key already completed it returns
	// the sale ID recorded for it; when another request holds it, ErrInFlight.
	Reserve(ctx context.Context, orgID uuid.UUID, key string) (saleID uuid.UUID, done bool, err error)

	// Complete records the sale produced under key.
	Complete(ctx context.Context, orgID uuid.UUID, key string, saleID uuid.UUID) error

	// Release forgets a reservation so the client may retry.
	Release(ctx context.Context, orgID uuid.UUID, key string) error
}

// redisStore implements Store with SETNX keys. A reservation expires after
// pendingTTL unless completed; a completed key lives for ttl.
type redisStore struct {
	rdb        *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
	logger     zerolog.Logger
}

// NewRedisStore creates a Redis-backed idempotency store. pendingTTL should
// outlast one sale attempt; it is capped at ttl.
func NewRedisStore(rdb *redis.Client, ttl, pendingTTL time.Duration, logger zerolog.Logger) Store {
	if pendingTTL <= 0 || pendingTTL > ttl {
		pendingTTL = ttl
	}
	return &redisStore{
		rdb:        rdb,
		ttl:        ttl,
		pendingTTL: pendingTTL,
		logger:     logger.With().Str("component", "idempotency").Logger(),
	}
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

func redisKey(orgID uuid.UUID, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", orgID, key)
}

func (s *redisStore) Reserve(ctx context.Context, orgID uuid.UUID, key string) (uuid.UUID, bool, error) {
	k := redisKey(orgID, key)

	ok, err := s.rdb.SetNX(ctx, k, pending, s.pendingTTL).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to reserve idempotency key")
		return uuid.Nil, false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return uuid.Nil, false, nil
	}

	val, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired or released between SETNX and GET; the caller may retry.
		return uuid.Nil, false, ErrInFlight
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == pending {
		return uuid.Nil, false, ErrInFlight
	}

	saleID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt idempotency record for %s: %w", key, err)
	}
	return saleID, true, nil
}

func (s *redisStore) Complete(ctx context.Context, orgID uuid.UUID, key string, saleID uuid.UUID) error {
	if err := s.rdb.Set(ctx, redisKey(orgID, key), saleID.String(), s.ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to complete idempotency key")
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

func (s *redisStore) Release(ctx context.Context, orgID uuid.UUID, key string) error {
	if err := s.rdb.Del(ctx, redisKey(orgID, key)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
