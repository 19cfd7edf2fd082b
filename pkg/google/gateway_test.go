package google

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/daymark/daymark/internal/utils"
	"github.com/daymark/daymark/pkg/eventcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// fakeCalendarAPI is an in-memory CalendarAPI that mimics the provider's
// observable behavior: id conflicts on insert, 404 on unknown events, and
// full replacement on update.
type fakeCalendarAPI struct {
	events map[string]*gcal.Event

	insertErr  error
	getErr     error
	replaceErr error

	insertCalls    int
	getCalls       int
	lastCalendarId string
}

func newFakeCalendarAPI() *fakeCalendarAPI {
	return &fakeCalendarAPI{events: map[string]*gcal.Event{}}
}

func (f *fakeCalendarAPI) InsertEvent(ctx context.Context, calendarId string, event *gcal.Event) (*gcal.Event, error) {
	f.insertCalls++
	f.lastCalendarId = calendarId
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if event.Id != "" {
		if _, exists := f.events[event.Id]; exists {
			return nil, &googleapi.Error{Code: http.StatusConflict, Message: "The requested identifier already exists."}
		}
	} else {
		event.Id = "providerassignedid"
	}
	stored := *event
	stored.HtmlLink = "https://calendar.google.com/event?eid=" + stored.Id
	f.events[stored.Id] = &stored
	return &stored, nil
}

func (f *fakeCalendarAPI) GetEvent(ctx context.Context, calendarId string, eventId string) (*gcal.Event, error) {
	f.getCalls++
	f.lastCalendarId = calendarId
	if f.getErr != nil {
		return nil, f.getErr
	}
	event, ok := f.events[eventId]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "Not Found"}
	}
	copied := *event
	return &copied, nil
}

func (f *fakeCalendarAPI) ReplaceEvent(ctx context.Context, calendarId string, eventId string, event *gcal.Event) (*gcal.Event, error) {
	f.lastCalendarId = calendarId
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	if _, ok := f.events[eventId]; !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "Not Found"}
	}
	stored := *event
	stored.Id = eventId
	stored.HtmlLink = "https://calendar.google.com/event?eid=" + eventId
	f.events[eventId] = &stored
	return &stored, nil
}

func (f *fakeCalendarAPI) ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error) {
	return []*gcal.CalendarListEntry{
		{Id: "primary", Summary: "Personal"},
		{Id: "work@example.com", Summary: "Work"},
	}, nil
}

func newTestGateway(api *fakeCalendarAPI, cache eventcache.Repository) *Gateway {
	factory := func(ctx context.Context, accessToken string) (CalendarAPI, error) {
		return api, nil
	}
	clock := &utils.MockClock{FixedNow: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	return NewGateway(factory, cache, NewCacheReconciler(cache, clock), "primary", "Europe/Warsaw")
}

func timedRequest() EventMutationRequest {
	return EventMutationRequest{
		Title:     "Dentist",
		StartTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		TimeZone:  "Europe/Warsaw",
	}
}

func TestGatewayCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a missing title before reaching the provider", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())
		req := timedRequest()
		req.Title = ""

		_, err := gateway.CreateEvent(ctx, 1, "token", "", req)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Zero(t, api.insertCalls)
	})

	t.Run("rejects missing times before reaching the provider", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())
		req := timedRequest()
		req.EndTime = time.Time{}

		_, err := gateway.CreateEvent(ctx, 1, "token", "", req)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Zero(t, api.insertCalls)
	})

	t.Run("attaches a deterministic id derived from the request id", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())
		req := timedRequest()
		req.RequestId = "Req-123-ABC"

		result, err := gateway.CreateEvent(ctx, 1, "token", "", req)

		require.NoError(t, err)
		assert.Equal(t, "req123abc", result.EventId)
		assert.False(t, result.Duplicate)
	})

	t.Run("lets the provider assign the id when the request id is too short", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())
		req := timedRequest()
		req.RequestId = "ab"

		result, err := gateway.CreateEvent(ctx, 1, "token", "", req)

		require.NoError(t, err)
		assert.Equal(t, "providerassignedid", result.EventId)
	})

	t.Run("replaying a create returns the existing event as a duplicate", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())
		req := timedRequest()
		req.RequestId = "req-123"

		first, err := gateway.CreateEvent(ctx, 1, "token", "", req)
		require.NoError(t, err)

		second, err := gateway.CreateEvent(ctx, 1, "token", "", req)
		require.NoError(t, err)

		assert.True(t, second.Duplicate)
		assert.Equal(t, first.EventId, second.EventId)
		assert.Len(t, api.events, 1)
	})

	t.Run("passes the provider's status through on failure", func(t *testing.T) {
		api := newFakeCalendarAPI()
		api.insertErr = &googleapi.Error{Code: http.StatusForbidden, Message: "quota exceeded"}
		gateway := newTestGateway(api, eventcache.NewStubRepository())

		_, err := gateway.CreateEvent(ctx, 1, "token", "", timedRequest())

		var providerErr *ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, http.StatusForbidden, providerErr.Status)
	})

	t.Run("a conflict without a deterministic id is not a duplicate", func(t *testing.T) {
		api := newFakeCalendarAPI()
		api.insertErr = &googleapi.Error{Code: http.StatusConflict, Message: "conflict"}
		gateway := newTestGateway(api, eventcache.NewStubRepository())

		_, err := gateway.CreateEvent(ctx, 1, "token", "", timedRequest())

		var providerErr *ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, http.StatusConflict, providerErr.Status)
	})

	t.Run("caches the provider's confirmed times after a create", func(t *testing.T) {
		api := newFakeCalendarAPI()
		cache := eventcache.NewStubRepository()
		gateway := newTestGateway(api, cache)
		req := timedRequest()
		req.RequestId = "req-123"

		result, err := gateway.CreateEvent(ctx, 1, "token", "", req)
		require.NoError(t, err)

		cached, err := cache.Get(ctx, 1, result.EventId)
		require.NoError(t, err)
		assert.Equal(t, "primary", cached.CalendarId)
		assert.True(t, cached.StartTime.Equal(req.StartTime))
		assert.True(t, cached.EndTime.Equal(req.EndTime))
		assert.False(t, cached.AllDay)
	})

	t.Run("caches an all-day create as all-day", func(t *testing.T) {
		api := newFakeCalendarAPI()
		cache := eventcache.NewStubRepository()
		gateway := newTestGateway(api, cache)
		req := timedRequest()
		req.RequestId = "allday-1"
		req.AllDay = true

		result, err := gateway.CreateEvent(ctx, 1, "token", "", req)
		require.NoError(t, err)

		cached, err := cache.Get(ctx, 1, result.EventId)
		require.NoError(t, err)
		assert.True(t, cached.AllDay)
	})

	t.Run("targets the calendar saved in the user's settings", func(t *testing.T) {
		api := newFakeCalendarAPI()
		cache := eventcache.NewStubRepository()
		gateway := newTestGateway(api, cache)

		result, err := gateway.CreateEvent(ctx, 1, "token", "work@example.com", timedRequest())

		require.NoError(t, err)
		assert.Equal(t, "work@example.com", api.lastCalendarId)
		cached, err := cache.Get(ctx, 1, result.EventId)
		require.NoError(t, err)
		assert.Equal(t, "work@example.com", cached.CalendarId)
	})

	t.Run("falls back to the application default without a user calendar", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())

		_, err := gateway.CreateEvent(ctx, 1, "token", "", timedRequest())

		require.NoError(t, err)
		assert.Equal(t, "primary", api.lastCalendarId)
	})

	t.Run("a cache failure does not fail a confirmed create", func(t *testing.T) {
		api := newFakeCalendarAPI()
		cache := eventcache.NewStubRepository()
		cache.FailPut = true
		gateway := newTestGateway(api, cache)

		result, err := gateway.CreateEvent(ctx, 1, "token", "", timedRequest())

		require.NoError(t, err)
		assert.NotEmpty(t, result.EventId)
	})
}

func TestGatewayUpdateEvent(t *testing.T) {
	ctx := context.Background()

	seed := func(api *fakeCalendarAPI) {
		api.events["dentist1"] = &gcal.Event{
			Id:          "dentist1",
			Summary:     "Dentist",
			Location:    "Main St 5",
			Description: "Bring the referral",
			Start:       &gcal.EventDateTime{DateTime: "2024-06-01T09:00:00Z", TimeZone: "Europe/Warsaw"},
			End:         &gcal.EventDateTime{DateTime: "2024-06-01T10:00:00Z", TimeZone: "Europe/Warsaw"},
		}
	}

	updateRequest := func() EventMutationRequest {
		return EventMutationRequest{
			EventId:   "dentist1",
			StartTime: time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC),
			TimeZone:  "Europe/Warsaw",
		}
	}

	t.Run("rejects a missing event id", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())
		req := updateRequest()
		req.EventId = ""

		_, err := gateway.UpdateEvent(ctx, 1, "token", "", req)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Zero(t, api.getCalls)
	})

	t.Run("rewrites the times while preserving the event's other fields", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		gateway := newTestGateway(api, eventcache.NewStubRepository())

		result, err := gateway.UpdateEvent(ctx, 1, "token", "", updateRequest())
		require.NoError(t, err)

		stored := api.events["dentist1"]
		assert.Equal(t, "Dentist", stored.Summary)
		assert.Equal(t, "Main St 5", stored.Location)
		assert.Equal(t, "Bring the referral", stored.Description)
		assert.Equal(t, "2024-06-02T14:00:00Z", stored.Start.DateTime)
		assert.Equal(t, "2024-06-02T15:00:00Z", stored.End.DateTime)
		assert.True(t, result.Updated.StartTime.Equal(time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC)))
	})

	t.Run("flips a timed event to all-day", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		gateway := newTestGateway(api, eventcache.NewStubRepository())
		req := updateRequest()
		req.AllDay = true

		result, err := gateway.UpdateEvent(ctx, 1, "token", "", req)
		require.NoError(t, err)

		stored := api.events["dentist1"]
		assert.Equal(t, "2024-06-02", stored.Start.Date)
		assert.Equal(t, "2024-06-03", stored.End.Date)
		assert.Empty(t, stored.Start.DateTime)
		assert.True(t, result.Updated.AllDay)
	})

	t.Run("resolves the calendar from the cached row when the request has none", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		cache := eventcache.NewStubRepository()
		require.NoError(t, cache.Put(ctx, eventcache.CachedEvent{
			UserId:     1,
			EventId:    "dentist1",
			CalendarId: "work@example.com",
		}))
		gateway := newTestGateway(api, cache)

		_, err := gateway.UpdateEvent(ctx, 1, "token", "", updateRequest())

		require.NoError(t, err)
		assert.Equal(t, "work@example.com", api.lastCalendarId)
	})

	t.Run("an explicit calendar on the request wins over the cache", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		cache := eventcache.NewStubRepository()
		require.NoError(t, cache.Put(ctx, eventcache.CachedEvent{
			UserId:     1,
			EventId:    "dentist1",
			CalendarId: "work@example.com",
		}))
		gateway := newTestGateway(api, cache)
		req := updateRequest()
		req.CalendarId = "family@example.com"

		_, err := gateway.UpdateEvent(ctx, 1, "token", "", req)

		require.NoError(t, err)
		assert.Equal(t, "family@example.com", api.lastCalendarId)
	})

	t.Run("the user's saved calendar is used when the cache has no row", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		gateway := newTestGateway(api, eventcache.NewStubRepository())

		_, err := gateway.UpdateEvent(ctx, 1, "token", "work@example.com", updateRequest())

		require.NoError(t, err)
		assert.Equal(t, "work@example.com", api.lastCalendarId)
	})

	t.Run("a cached calendar wins over the user's saved calendar", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		cache := eventcache.NewStubRepository()
		require.NoError(t, cache.Put(ctx, eventcache.CachedEvent{
			UserId:     1,
			EventId:    "dentist1",
			CalendarId: "family@example.com",
		}))
		gateway := newTestGateway(api, cache)

		_, err := gateway.UpdateEvent(ctx, 1, "token", "work@example.com", updateRequest())

		require.NoError(t, err)
		assert.Equal(t, "family@example.com", api.lastCalendarId)
	})

	t.Run("an unknown event surfaces the provider's not found", func(t *testing.T) {
		api := newFakeCalendarAPI()
		gateway := newTestGateway(api, eventcache.NewStubRepository())

		_, err := gateway.UpdateEvent(ctx, 1, "token", "", updateRequest())

		var providerErr *ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, http.StatusNotFound, providerErr.Status)
	})

	t.Run("a failed replace leaves the cached row untouched", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		api.replaceErr = &googleapi.Error{Code: http.StatusInternalServerError, Message: "backend error"}
		cache := eventcache.NewStubRepository()
		before := eventcache.CachedEvent{
			UserId:     1,
			EventId:    "dentist1",
			CalendarId: "primary",
			StartTime:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, cache.Put(ctx, before))
		gateway := newTestGateway(api, cache)

		_, err := gateway.UpdateEvent(ctx, 1, "token", "", updateRequest())

		require.Error(t, err)
		cached, getErr := cache.Get(ctx, 1, "dentist1")
		require.NoError(t, getErr)
		assert.True(t, cached.StartTime.Equal(before.StartTime))
		assert.True(t, cached.EndTime.Equal(before.EndTime))
	})

	t.Run("a successful update refreshes the cached row from the provider", func(t *testing.T) {
		api := newFakeCalendarAPI()
		seed(api)
		cache := eventcache.NewStubRepository()
		gateway := newTestGateway(api, cache)
		req := updateRequest()

		_, err := gateway.UpdateEvent(ctx, 1, "token", "", req)
		require.NoError(t, err)

		cached, getErr := cache.Get(ctx, 1, "dentist1")
		require.NoError(t, getErr)
		assert.True(t, cached.StartTime.Equal(req.StartTime))
		assert.True(t, cached.EndTime.Equal(req.EndTime))
	})
}

func TestGatewayListCalendars(t *testing.T) {
	api := newFakeCalendarAPI()
	gateway := newTestGateway(api, eventcache.NewStubRepository())

	entries, err := gateway.ListCalendars(context.Background(), "token")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "primary", entries[0].Id)
}
