package repository

import (
	"context"
	"testing"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ domain.IntentStore = (*RedisIntentStore)(nil)
	_ domain.IntentStore = (*MemoryIntentStore)(nil)
	_ domain.IntentStore = (*FailoverIntentStore)(nil)
)

func testIntent(sessionID string) *models.BookingIntent {
	in := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return &models.BookingIntent{
		SessionID:      sessionID,
		UserID:         7,
		ListingID:      1,
		CheckinDate:    in,
		CheckoutDate:   in.AddDate(0, 0, 2),
		NumberOfPeople: 2,
		Amount:         12000,
		StagedAt:       time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestRedisIntentStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisIntentStore(client, 30*time.Minute)
	ctx := context.Background()

	t.Run("SetAndGetIntent", func(t *testing.T) {
		intent := testIntent("sess-1")
		require.NoError(t, repo.SetIntent(ctx, intent))

		got, err := repo.GetIntent(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, intent, got)
		assert.Equal(t, 30*time.Minute, s.TTL(intentKeyPrefix+"sess-1"))
	})

	t.Run("OverwriteIntent", func(t *testing.T) {
		intent := testIntent("sess-1")
		intent.NumberOfPeople = 1
		require.NoError(t, repo.SetIntent(ctx, intent))

		got, err := repo.GetIntent(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, 1, got.NumberOfPeople)
	})

	t.Run("GetMissingIntent", func(t *testing.T) {
		got, err := repo.GetIntent(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("IntentExpires", func(t *testing.T) {
		require.NoError(t, repo.SetIntent(ctx, testIntent("sess-ttl")))
		s.FastForward(31 * time.Minute)

		got, err := repo.GetIntent(ctx, "sess-ttl")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ReadSlidesExpiry", func(t *testing.T) {
		require.NoError(t, repo.SetIntent(ctx, testIntent("sess-slide")))
		s.FastForward(20 * time.Minute)

		got, err := repo.GetIntent(ctx, "sess-slide")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 30*time.Minute, s.TTL(intentKeyPrefix+"sess-slide"))

		s.FastForward(20 * time.Minute)
		got, err = repo.GetIntent(ctx, "sess-slide")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("ClearIntent", func(t *testing.T) {
		require.NoError(t, repo.SetIntent(ctx, testIntent("sess-2")))
		require.NoError(t, repo.ClearIntent(ctx, "sess-2"))

		got, err := repo.GetIntent(ctx, "sess-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CorruptPayload", func(t *testing.T) {
		require.NoError(t, s.Set(intentKeyPrefix+"bad", "{not json"))
		_, err := repo.GetIntent(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("RateLimit", func(t *testing.T) {
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, "sess-rl", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, "sess-rl", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, "sess-rl", limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, "sess-rl", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisIntentStore(nil, time.Hour)
		_, err := repo.GetIntent(ctx, "x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.Close()
		_, err := repo.GetIntent(ctx, "sess-1")
		assert.Error(t, err)
	})
}
