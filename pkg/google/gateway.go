package google

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/daymark/daymark/pkg/eventcache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Google accepts caller-chosen event ids of 5 to 1024 characters.
const (
	minEventIdLen = 5
	maxEventIdLen = 1024
)

// EventMutationRequest is the caller's intent for one create or update,
// built from the incoming request and discarded after the call.
type EventMutationRequest struct {
	EventId     string // update only
	Title       string // create only
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	TimeZone    string
	CalendarId  string // update only, optional
	RequestId   string // create only, optional idempotency token
}

type CreateResult struct {
	EventId   string
	Link      string
	Duplicate bool
}

type UpdateResult struct {
	EventId string
	Link    string
	Updated NormalizedTimes
}

// CalendarAPI is the thin surface of the Google Calendar events API the
// gateway needs. Tests substitute a fake; production uses calendar/v3.
type CalendarAPI interface {
	InsertEvent(ctx context.Context, calendarId string, event *gcal.Event) (*gcal.Event, error)
	GetEvent(ctx context.Context, calendarId string, eventId string) (*gcal.Event, error)
	ReplaceEvent(ctx context.Context, calendarId string, eventId string, event *gcal.Event) (*gcal.Event, error)
	ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error)
}

// CalendarAPIFactory builds a CalendarAPI bound to one access token.
type CalendarAPIFactory func(ctx context.Context, accessToken string) (CalendarAPI, error)

type calendarAPIImpl struct {
	service *gcal.Service
}

// NewCalendarAPI builds the production CalendarAPI on top of calendar/v3
// with static bearer auth; token freshness is the TokenLifecycleManager's
// job, not the HTTP client's.
func NewCalendarAPI(ctx context.Context, accessToken string) (CalendarAPI, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	service, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, err
	}
	return &calendarAPIImpl{service: service}, nil
}

func (a *calendarAPIImpl) InsertEvent(ctx context.Context, calendarId string, event *gcal.Event) (*gcal.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, providerCallTimeout)
	defer cancel()
	return a.service.Events.Insert(calendarId, event).Context(ctx).Do()
}

func (a *calendarAPIImpl) GetEvent(ctx context.Context, calendarId string, eventId string) (*gcal.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, providerCallTimeout)
	defer cancel()
	return a.service.Events.Get(calendarId, eventId).Context(ctx).Do()
}

func (a *calendarAPIImpl) ReplaceEvent(ctx context.Context, calendarId string, eventId string, event *gcal.Event) (*gcal.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, providerCallTimeout)
	defer cancel()
	// Events.Update is a full PUT replace, not a patch.
	return a.service.Events.Update(calendarId, eventId, event).Context(ctx).Do()
}

func (a *calendarAPIImpl) ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, providerCallTimeout)
	defer cancel()
	list, err := a.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// Gateway performs idempotent create and update mutations against Google
// Calendar and keeps the local event cache consistent with what the
// provider confirmed.
type Gateway struct {
	apiFactory        CalendarAPIFactory
	cache             eventcache.Repository
	reconciler        *CacheReconciler
	defaultCalendarId string
	defaultTimezone   string
}

func NewGateway(apiFactory CalendarAPIFactory, cache eventcache.Repository, reconciler *CacheReconciler, defaultCalendarId string, defaultTimezone string) *Gateway {
	return &Gateway{
		apiFactory:        apiFactory,
		cache:             cache,
		reconciler:        reconciler,
		defaultCalendarId: defaultCalendarId,
		defaultTimezone:   defaultTimezone,
	}
}

// CreateEvent inserts a new event. When the request carries a requestId, a
// deterministic event id derived from it makes the call safe to retry: a
// replay conflicts on the id, and the existing event is returned with
// Duplicate set instead of creating a second one.
func (g *Gateway) CreateEvent(ctx context.Context, userId int, accessToken string, userCalendarId string, req EventMutationRequest) (CreateResult, error) {
	if req.Title == "" {
		return CreateResult{}, &ValidationError{Message: "title is required"}
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return CreateResult{}, &ValidationError{Message: "startTime and endTime are required"}
	}

	start, end := toProviderTimes(req.StartTime, req.EndTime, req.AllDay, req.TimeZone, g.defaultTimezone)
	event := &gcal.Event{
		Summary:     req.Title,
		Description: req.Description,
		Location:    req.Location,
		Start:       start,
		End:         end,
	}

	deterministicId := sanitizeEventId(req.RequestId)
	event.Id = deterministicId

	calendarId := g.fallbackCalendarId(userCalendarId)
	api, err := g.apiFactory(ctx, accessToken)
	if err != nil {
		return CreateResult{}, err
	}

	created, err := api.InsertEvent(ctx, calendarId, event)
	if err != nil {
		if deterministicId != "" && providerStatus(err) == http.StatusConflict {
			// Idempotent replay: the id already exists, hand back the
			// event created by the first attempt.
			log.Debugf("event id %s already exists for user %d, returning existing event", deterministicId, userId)
			existing, getErr := api.GetEvent(ctx, calendarId, deterministicId)
			if getErr != nil {
				return CreateResult{}, toProviderError(getErr)
			}
			g.reconcile(ctx, userId, calendarId, existing)
			return CreateResult{EventId: existing.Id, Link: existing.HtmlLink, Duplicate: true}, nil
		}
		return CreateResult{}, toProviderError(err)
	}

	g.reconcile(ctx, userId, calendarId, created)
	return CreateResult{EventId: created.Id, Link: created.HtmlLink}, nil
}

// UpdateEvent rewrites an event's start/end. It fetches the provider's full
// representation and submits a full replace with only the temporal fields
// overwritten: Google rejects partial bodies when an event flips between
// timed and all-day, and a full replace is insensitive to that.
func (g *Gateway) UpdateEvent(ctx context.Context, userId int, accessToken string, userCalendarId string, req EventMutationRequest) (UpdateResult, error) {
	if req.EventId == "" {
		return UpdateResult{}, &ValidationError{Message: "eventId is required"}
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return UpdateResult{}, &ValidationError{Message: "startTime and endTime are required"}
	}

	calendarId := g.resolveCalendarId(ctx, userId, userCalendarId, req)

	api, err := g.apiFactory(ctx, accessToken)
	if err != nil {
		return UpdateResult{}, err
	}

	existing, err := api.GetEvent(ctx, calendarId, req.EventId)
	if err != nil {
		return UpdateResult{}, toProviderError(err)
	}

	existing.Start, existing.End = toProviderTimes(req.StartTime, req.EndTime, req.AllDay, req.TimeZone, g.defaultTimezone)

	updated, err := api.ReplaceEvent(ctx, calendarId, req.EventId, existing)
	if err != nil {
		return UpdateResult{}, toProviderError(err)
	}

	g.reconcile(ctx, userId, calendarId, updated)

	times, err := fromProviderEvent(updated)
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{EventId: updated.Id, Link: updated.HtmlLink, Updated: times}, nil
}

// ListCalendars returns the user's calendars for calendar selection.
func (g *Gateway) ListCalendars(ctx context.Context, accessToken string) ([]*gcal.CalendarListEntry, error) {
	api, err := g.apiFactory(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	entries, err := api.ListCalendars(ctx)
	if err != nil {
		return nil, toProviderError(err)
	}
	return entries, nil
}

// resolveCalendarId prefers the caller's calendar, then the cached row for
// the event, then the user's saved calendar, then the configured default.
func (g *Gateway) resolveCalendarId(ctx context.Context, userId int, userCalendarId string, req EventMutationRequest) string {
	if req.CalendarId != "" {
		return req.CalendarId
	}
	cached, err := g.cache.Get(ctx, userId, req.EventId)
	if err == nil && cached.CalendarId != "" {
		return cached.CalendarId
	}
	if err != nil && !errors.Is(err, eventcache.ErrNotCached) {
		log.Warnf("failed to resolve calendar id from cache for user %d event %s: %v", userId, req.EventId, err)
	}
	return g.fallbackCalendarId(userCalendarId)
}

// fallbackCalendarId is the calendar used when neither the request nor the
// cache names one: the calendar picked in the user's settings, or the
// application-wide default when the user never picked one.
func (g *Gateway) fallbackCalendarId(userCalendarId string) string {
	if userCalendarId != "" {
		return userCalendarId
	}
	return g.defaultCalendarId
}

// reconcile writes the provider's confirmed event back into the cache. The
// mutation already succeeded, so a cache failure is logged rather than
// turned into a request failure; the next confirmed mutation repairs it.
func (g *Gateway) reconcile(ctx context.Context, userId int, calendarId string, event *gcal.Event) {
	if err := g.reconciler.Reconcile(ctx, userId, calendarId, event); err != nil {
		log.Errorf("failed to reconcile cache for user %d event %s: %v", userId, event.Id, err)
	}
}

// sanitizeEventId derives a deterministic provider event id from an
// idempotency token: lowercased, non-alphanumerics stripped, truncated to
// the provider's maximum. Results shorter than the provider's minimum are
// dropped so the provider assigns the id instead.
func sanitizeEventId(requestId string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(requestId) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if len(id) > maxEventIdLen {
		id = id[:maxEventIdLen]
	}
	if len(id) < minEventIdLen {
		return ""
	}
	return id
}

func providerStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func toProviderError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{Status: apiErr.Code, Message: apiErr.Message}
	}
	// Transport-level failure with no provider status to pass through.
	return &ProviderError{Status: http.StatusBadGateway, Message: err.Error()}
}
