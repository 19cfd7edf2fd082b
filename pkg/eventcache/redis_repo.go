package eventcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func cacheKey(userId int, eventId string) string {
	return fmt.Sprintf("calendar_event:%d:%s", userId, eventId)
}

func (r *RedisRepository) Get(ctx context.Context, userId int, eventId string) (CachedEvent, error) {
	data, err := r.client.Get(ctx, cacheKey(userId, eventId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return CachedEvent{}, ErrNotCached
	} else if err != nil {
		return CachedEvent{}, fmt.Errorf("failed to read cached event: %w", err)
	}

	var event CachedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		log.Errorf("failed to unmarshal cached event %s for user %d: %v", eventId, userId, err)
		return CachedEvent{}, fmt.Errorf("failed to unmarshal cached event: %w", err)
	}
	return event, nil
}

func (r *RedisRepository) Put(ctx context.Context, event CachedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cached event: %w", err)
	}

	// No TTL: the cache mirrors provider state until the next confirmed
	// mutation overwrites it or the event is dropped explicitly.
	if err := r.client.Set(ctx, cacheKey(event.UserId, event.EventId), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store cached event: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, userId int, eventId string) error {
	if err := r.client.Del(ctx, cacheKey(userId, eventId)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached event: %w", err)
	}
	return nil
}
