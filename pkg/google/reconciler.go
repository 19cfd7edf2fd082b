package google

import (
	"context"

	"github.com/daymark/daymark/internal/utils"
	"github.com/daymark/daymark/pkg/eventcache"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

// CacheReconciler is the only writer of cached event time fields. It runs
// once per confirmed provider mutation and copies the provider's returned
// values, never the caller's request, into the cache.
type CacheReconciler struct {
	cache eventcache.Repository
	clock utils.Clock
}

func NewCacheReconciler(cache eventcache.Repository, clock utils.Clock) *CacheReconciler {
	return &CacheReconciler{cache: cache, clock: clock}
}

func (r *CacheReconciler) Reconcile(ctx context.Context, userId int, calendarId string, event *gcal.Event) error {
	times, err := fromProviderEvent(event)
	if err != nil {
		return err
	}

	log.Tracef("reconciling cache for user %d event %s", userId, event.Id)
	return r.cache.Put(ctx, eventcache.CachedEvent{
		UserId:     userId,
		EventId:    event.Id,
		CalendarId: calendarId,
		StartTime:  times.StartTime,
		EndTime:    times.EndTime,
		AllDay:     times.AllDay,
		UpdatedAt:  r.clock.Now(),
	})
}
