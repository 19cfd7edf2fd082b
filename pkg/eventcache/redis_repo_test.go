package eventcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *RedisRepository {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return NewRedisRepository(client)
}

func TestRedisRepository(t *testing.T) {
	ctx := context.Background()

	event := CachedEvent{
		UserId:     1,
		EventId:    "abc123",
		CalendarId: "primary",
		StartTime:  time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC),
		AllDay:     false,
		UpdatedAt:  time.Date(2024, time.March, 10, 10, 0, 1, 0, time.UTC),
	}

	t.Run("Get returns ErrNotCached for unknown event", func(t *testing.T) {
		repo := newTestRepository(t)

		_, err := repo.Get(ctx, 1, "missing")
		assert.ErrorIs(t, err, ErrNotCached)
	})

	t.Run("Put then Get round-trips the event", func(t *testing.T) {
		repo := newTestRepository(t)

		require.NoError(t, repo.Put(ctx, event))
		stored, err := repo.Get(ctx, 1, "abc123")
		require.NoError(t, err)
		assert.Equal(t, event, stored)
	})

	t.Run("Put overwrites the previous row for the same key", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.Put(ctx, event))

		updated := event
		updated.EndTime = event.EndTime.Add(time.Hour)
		updated.AllDay = true
		require.NoError(t, repo.Put(ctx, updated))

		stored, err := repo.Get(ctx, 1, "abc123")
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("events are isolated per user", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.Put(ctx, event))

		_, err := repo.Get(ctx, 2, "abc123")
		assert.ErrorIs(t, err, ErrNotCached)
	})

	t.Run("Delete removes the row", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.Put(ctx, event))

		require.NoError(t, repo.Delete(ctx, 1, "abc123"))
		_, err := repo.Get(ctx, 1, "abc123")
		assert.ErrorIs(t, err, ErrNotCached)
	})
}
