package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unitime-app/unitime-api/api/swagger"
	"github.com/unitime-app/unitime-api/internal/handler"
	"github.com/unitime-app/unitime-api/internal/middleware"
	"github.com/unitime-app/unitime-api/internal/models"
	"github.com/unitime-app/unitime-api/internal/repository"
	"github.com/unitime-app/unitime-api/internal/repository/memory"
	"github.com/unitime-app/unitime-api/internal/service"
	"github.com/unitime-app/unitime-api/pkg/cache"
	"github.com/unitime-app/unitime-api/pkg/config"
	"github.com/unitime-app/unitime-api/pkg/database"
	"github.com/unitime-app/unitime-api/pkg/logger"
	corsmiddleware "github.com/unitime-app/unitime-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unitime-app/unitime-api/pkg/middleware/requestid"
)

// @title UniTime API
// @version 0.1.0
// @description Student schedule backend: subjects, events, calendar, tasks, dashboard
// @BasePath /api/v1
// @schemes http

// Store contracts shared by the Postgres repositories and the seeded
// in-memory demo store, so wiring below can pick either backend.
type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
}

type subjectStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
	FindByID(ctx context.Context, userID, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, userID, id string) error
}

type eventStore interface {
	ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error)
	FindByID(ctx context.Context, userID, id string) (*models.ScheduleEvent, error)
	Create(ctx context.Context, event *models.ScheduleEvent) error
	Patch(ctx context.Context, userID, id string, patch models.EventPatch) error
	SetCompletion(ctx context.Context, userID, id string, completed bool) error
	Delete(ctx context.Context, userID, id string) error
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		users        userStore
		subjects     subjectStore
		events       eventStore
		summaryStore summaryCache
	)

	if cfg.Demo.Enabled {
		store, err := memory.NewSeededStore()
		if err != nil {
			logr.Sugar().Fatalw("failed to seed demo store", "error", err)
		}
		users, subjects, events = store.Users(), store.Subjects(), store.Events()
		logr.Sugar().Infow("demo mode enabled, using seeded in-memory store",
			"email", memory.DemoEmail, "password", memory.DemoPassword)
	} else {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck

		users = repository.NewUserRepository(db)
		subjects = repository.NewSubjectRepository(db)
		events = repository.NewEventRepository(db)

		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			summaryStore = cacheRepo
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	subjectSvc := service.NewSubjectService(subjects, validate, logr)
	dashboardSvc := service.NewDashboardService(events, summaryStore, cfg.Dashboard.CacheTTL, metricsSvc, logr)
	eventSvc := service.NewEventService(events, dashboardSvc, validate, logr)
	taskSvc := service.NewTaskService(events, dashboardSvc, logr)
	calendarSvc := service.NewCalendarService(events, cfg.Calendar.Timezone, cfg.Calendar.WeekStartsOn, logr)
	exportSvc := service.NewExportService(events, subjects, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	protected := api.Group("", middleware.JWT(authSvc))
	{
		protected.GET("/subjects", subjectHandler.List)
		protected.POST("/subjects", subjectHandler.Create)
		protected.GET("/subjects/next-code", subjectHandler.NextCode)
		protected.GET("/subjects/:id", subjectHandler.Get)
		protected.PATCH("/subjects/:id", subjectHandler.Update)
		protected.DELETE("/subjects/:id", subjectHandler.Delete)

		protected.GET("/events", eventHandler.List)
		protected.POST("/events", eventHandler.Create)
		protected.GET("/events/:id", eventHandler.Get)
		protected.PATCH("/events/:id", eventHandler.Patch)
		protected.DELETE("/events/:id", eventHandler.Delete)

		protected.GET("/calendar/month", calendarHandler.MonthGrid)

		protected.GET("/tasks", taskHandler.List)
		protected.POST("/tasks/:id/toggle", taskHandler.Toggle)

		protected.GET("/dashboard/summary", dashboardHandler.Summary)

		protected.GET("/export/events.csv", exportHandler.EventsCSV)
		protected.GET("/export/events.pdf", exportHandler.EventsPDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "demo", cfg.Demo.Enabled)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
