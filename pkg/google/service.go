package google

import (
	"context"
	"fmt"

	"github.com/daymark/daymark/pkg/user"
	gcal "google.golang.org/api/calendar/v3"
)

type CalendarItem struct {
	ID      string
	Summary string
}

// Service is the per-request orchestrator for calendar synchronization:
// it resolves the caller, loads the stored connection, ensures the access
// token is valid, and dispatches to the mutation gateway.
type Service interface {
	CreateEvent(ctx context.Context, req EventMutationRequest) (CreateResult, error)
	UpdateEvent(ctx context.Context, req EventMutationRequest) (UpdateResult, error)
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
}

type ServiceImpl struct {
	connections ConnectionRepo
	tokens      *TokenLifecycleManager
	gateway     *Gateway
}

func NewService(connections ConnectionRepo, tokens *TokenLifecycleManager, gateway *Gateway) *ServiceImpl {
	return &ServiceImpl{
		connections: connections,
		tokens:      tokens,
		gateway:     gateway,
	}
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, req EventMutationRequest) (CreateResult, error) {
	caller, err := s.authorize(ctx)
	if err != nil {
		return CreateResult{}, err
	}
	return s.gateway.CreateEvent(ctx, caller.userId, caller.accessToken, caller.calendarId, req)
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, req EventMutationRequest) (UpdateResult, error) {
	caller, err := s.authorize(ctx)
	if err != nil {
		return UpdateResult{}, err
	}
	return s.gateway.UpdateEvent(ctx, caller.userId, caller.accessToken, caller.calendarId, req)
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	caller, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.gateway.ListCalendars(ctx, caller.accessToken)
	if err != nil {
		return nil, err
	}
	items := make([]CalendarItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, calendarListEntryToItem(entry))
	}
	return items, nil
}

// authorizedCaller is the resolved context for one calendar call: who is
// asking, a validated access token, and the calendar picked in the user's
// settings (empty when the user never picked one).
type authorizedCaller struct {
	userId      int
	accessToken string
	calendarId  string
}

// authorize resolves the current user, loads their stored connection, and
// returns a validated access token. Token refresh failures short-circuit
// here, before any mutation call is made.
func (s *ServiceImpl) authorize(ctx context.Context) (authorizedCaller, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return authorizedCaller{}, fmt.Errorf("failed to get current user: %w", err)
	}

	conn, err := s.connections.GetByUserId(ctx, currentUser.Id)
	if err != nil {
		return authorizedCaller{}, err
	}

	accessToken, err := s.tokens.EnsureValid(ctx, conn)
	if err != nil {
		return authorizedCaller{}, err
	}
	return authorizedCaller{
		userId:      currentUser.Id,
		accessToken: accessToken,
		calendarId:  currentUser.Settings.GoogleCalendar.CalendarId,
	}, nil
}

func calendarListEntryToItem(entry *gcal.CalendarListEntry) CalendarItem {
	return CalendarItem{
		ID:      entry.Id,
		Summary: entry.Summary,
	}
}
