package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stayhub/internal/config"
	"stayhub/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	intentKeyPrefix    = "booking_intent:"
	rateLimitKeyPrefix = "booking_attempts:"
)

// RedisIntentStore keeps booking intents in redis with a sliding TTL: every
// read pushes the expiry back by ttl.
type RedisIntentStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisIntentStore(client *redis.Client, ttl time.Duration) *RedisIntentStore {
	return &RedisIntentStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisIntentStore) GetIntent(ctx context.Context, sessionID string) (*models.BookingIntent, error) {
	if r.client == nil {
		return nil, errors.New("redis client is nil")
	}
	key := intentKeyPrefix + sessionID
	var val string
	var err error
	if r.ttl > 0 {
		val, err = r.client.GetEx(ctx, key, r.ttl).Result()
	} else {
		val, err = r.client.Get(ctx, key).Result()
	}
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intent from redis: %w", err)
	}

	var intent models.BookingIntent
	if err := json.Unmarshal([]byte(val), &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intent: %w", err)
	}
	return &intent, nil
}

// SetIntent overwrites any intent already staged for the session.
func (r *RedisIntentStore) SetIntent(ctx context.Context, intent *models.BookingIntent) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	if err := r.client.Set(ctx, intentKeyPrefix+intent.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set intent in redis: %w", err)
	}
	return nil
}

func (r *RedisIntentStore) ClearIntent(ctx context.Context, sessionID string) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	if err := r.client.Del(ctx, intentKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete intent from redis: %w", err)
	}
	return nil
}

// CheckRateLimit is a fixed-window counter; the first hit in a window sets its expiry.
func (r *RedisIntentStore) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client is nil")
	}
	key := rateLimitKeyPrefix + sessionID
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Ping checks the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the client if there is one.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
