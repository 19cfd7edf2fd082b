package eventcache

import (
	"context"
	"errors"
	"time"
)

// ErrNotCached is returned when no cached row exists for the requested event.
var ErrNotCached = errors.New("event not found in cache")

// CachedEvent is the local mirror of one provider event, keyed by
// (UserId, EventId). Its time fields are always copied from the provider's
// response, never from a caller's request, so the cache cannot drift when
// the provider adjusts values on write.
type CachedEvent struct {
	UserId     int       `json:"userId"`
	EventId    string    `json:"eventId"`
	CalendarId string    `json:"calendarId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	AllDay     bool      `json:"allDay"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Repository interface {
	Get(ctx context.Context, userId int, eventId string) (CachedEvent, error)
	Put(ctx context.Context, event CachedEvent) error
	Delete(ctx context.Context, userId int, eventId string) error
}
