package google

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/daymark/daymark/internal/rest"
	"github.com/daymark/daymark/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type CreateEventRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	AllDay      bool   `json:"allDay,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	RequestId   string `json:"requestId,omitempty"`
}

type UpdateEventRequestDTO struct {
	CalendarId string `json:"calendarId,omitempty"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	AllDay     bool   `json:"allDay,omitempty"`
	TimeZone   string `json:"timeZone,omitempty"`
}

type CreateEventResponseDTO struct {
	EventId   string `json:"eventId"`
	Link      string `json:"link"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type UpdateEventResponseDTO struct {
	EventId string          `json:"eventId"`
	Link    string          `json:"link"`
	Updated UpdatedEventDTO `json:"updated"`
}

type UpdatedEventDTO struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	AllDay    bool   `json:"allDay"`
}

type CalendarItemDTO struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateEvent godoc
// @Summary Create a calendar event
// @Description Create an event in the user's Google calendar, idempotently when a requestId is given
// @Tags Google
// @Accept json
// @Produce json
// @Param event body CreateEventRequestDTO true "Event"
// @Success 200 {object} CreateEventResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {object} rest.ErrorResponse "Unauthorized or reconnection required"
// @Failure 404 {object} rest.ErrorResponse "No calendar connection"
// @Router /api/integrations/google/event [post]
// @Security XUserId
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Creating Google calendar event")

	var dto CreateEventRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	req := EventMutationRequest{
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		AllDay:      dto.AllDay,
		TimeZone:    dto.TimeZone,
		RequestId:   dto.RequestId,
	}
	if !h.parseTimes(w, dto.StartTime, dto.EndTime, &req) {
		return
	}

	result, err := h.service.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(CreateEventResponseDTO{
		EventId:   result.EventId,
		Link:      result.Link,
		Duplicate: result.Duplicate,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateEvent godoc
// @Summary Update a calendar event's times
// @Description Rewrite the start/end of an existing event via a full replace
// @Tags Google
// @Accept json
// @Produce json
// @Param eventId path string true "Provider event ID"
// @Param event body UpdateEventRequestDTO true "Event times"
// @Success 200 {object} UpdateEventResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {object} rest.ErrorResponse "Unauthorized or reconnection required"
// @Failure 404 {object} rest.ErrorResponse "No calendar connection"
// @Router /api/integrations/google/event/{eventId} [put]
// @Security XUserId
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	eventId := mux.Vars(r)["eventId"]
	log.Tracef("Updating Google calendar event %s", eventId)

	var dto UpdateEventRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	req := EventMutationRequest{
		EventId:    eventId,
		CalendarId: dto.CalendarId,
		AllDay:     dto.AllDay,
		TimeZone:   dto.TimeZone,
	}
	if !h.parseTimes(w, dto.StartTime, dto.EndTime, &req) {
		return
	}

	result, err := h.service.UpdateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(UpdateEventResponseDTO{
		EventId: result.EventId,
		Link:    result.Link,
		Updated: UpdatedEventDTO{
			StartTime: result.Updated.StartTime.Format(time.RFC3339),
			EndTime:   result.Updated.EndTime.Format(time.RFC3339),
			AllDay:    result.Updated.AllDay,
		},
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListCalendars godoc
// @Summary List the user's Google calendars
// @Tags Google
// @Produce json
// @Success 200 {array} CalendarItemDTO
// @Router /api/integrations/google/calendars [get]
// @Security XUserId
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	items := make([]CalendarItemDTO, 0, len(calendars))
	for _, c := range calendars {
		items = append(items, CalendarItemDTO{Id: c.ID, Summary: c.Summary})
	}
	if err := json.NewEncoder(w).Encode(items); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) parseTimes(w http.ResponseWriter, startTime, endTime string, req *EventMutationRequest) bool {
	if startTime == "" || endTime == "" {
		writeError(w, http.StatusBadRequest, rest.ErrorResponse{Error: "startTime and endTime are required"})
		return false
	}
	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid start time format",
			Details: "Start time must be in RFC3339 format",
		})
		return false
	}
	end, err := time.Parse(time.RFC3339, endTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid end time format",
			Details: "End time must be in RFC3339 format",
		})
		return false
	}
	req.StartTime = start
	req.EndTime = end
	return true
}

// writeServiceError maps the gateway's error taxonomy to response codes:
// validation 400, missing caller 401, missing connection 404, refresh
// failure 401 with the needsReconnect flag, provider failures pass the
// provider's status through unchanged.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var refreshErr *TokenRefreshError
	var providerErr *ProviderError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, rest.ErrorResponse{Error: validationErr.Message})
	case errors.Is(err, user.ErrNoUser):
		writeError(w, http.StatusUnauthorized, rest.ErrorResponse{Error: "Unauthorized"})
	case errors.Is(err, ErrNoConnection):
		writeError(w, http.StatusNotFound, rest.ErrorResponse{Error: "No Google calendar connection"})
	case errors.As(err, &refreshErr):
		writeError(w, http.StatusUnauthorized, rest.ErrorResponse{
			Error:          "Google calendar authorization failed",
			NeedsReconnect: refreshErr.NeedsReconnect,
		})
	case errors.As(err, &providerErr):
		writeError(w, providerErr.Status, rest.ErrorResponse{Error: providerErr.Message})
	default:
		log.Errorf("unexpected error handling calendar request: %v", err)
		writeError(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "Internal server error"})
	}
}

func writeError(w http.ResponseWriter, status int, body rest.ErrorResponse) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
