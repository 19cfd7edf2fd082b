package app

import (
	"github.com/daymark/daymark/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Tasks
	r.HandleFunc("/api/task", deps.TaskHandler.CaptureTask).Methods("POST")
	r.HandleFunc("/api/task", deps.TaskHandler.GetTasks).Methods("GET")
	r.HandleFunc("/api/task/{taskId}/status", deps.TaskHandler.SetTaskStatus).Methods("PUT")
	r.HandleFunc("/api/task/{taskId}", deps.TaskHandler.DeleteTask).Methods("DELETE")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/integrations/google/event", deps.GoogleHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/integrations/google/event/{eventId}", deps.GoogleHandler.UpdateEvent).Methods("PUT")
}
