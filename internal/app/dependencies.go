package app

import (
	"github.com/daymark/daymark/internal/config"
	"github.com/daymark/daymark/internal/utils"
	"github.com/daymark/daymark/pkg/eventcache"
	"github.com/daymark/daymark/pkg/google"
	"github.com/daymark/daymark/pkg/task"
	"github.com/daymark/daymark/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserService user.Service
	UserHandler *user.Handler

	TaskService task.TaskService
	TaskHandler *task.TaskHandler

	EventCache eventcache.Repository

	ConnectionRepo  google.ConnectionRepo
	GoogleAuth      *google.GoogleAuth
	TokenManager    *google.TokenLifecycleManager
	CacheReconciler *google.CacheReconciler
	Gateway         *google.Gateway
	GoogleService   google.Service
	GoogleHandler   *google.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, redisClient *redis.Client, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.TaskService = task.NewTaskService(task.NewTaskRepo(db), task.DefaultDueDateParser, deps.Clock)
	deps.TaskHandler = task.NewTaskHandler(deps.TaskService)

	deps.EventCache = eventcache.NewRedisRepository(redisClient)

	oauthConfig := google.NewOAuthConfig(cfg)
	deps.ConnectionRepo = google.NewConnectionRepo(db)
	deps.GoogleAuth = google.NewGoogleAuth(deps.ConnectionRepo, deps.UserService, oauthConfig)
	deps.TokenManager = google.NewTokenLifecycleManager(deps.ConnectionRepo, oauthConfig, deps.Clock)
	deps.CacheReconciler = google.NewCacheReconciler(deps.EventCache, deps.Clock)
	deps.Gateway = google.NewGateway(
		google.NewCalendarAPI,
		deps.EventCache,
		deps.CacheReconciler,
		cfg.Google.DefaultCalendarId,
		cfg.Calendar.DefaultTimezone,
	)
	deps.GoogleService = google.NewService(deps.ConnectionRepo, deps.TokenManager, deps.Gateway)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	return deps
}
