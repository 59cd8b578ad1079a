package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/config"
	"github.com/stemsi/evaluation-backend/internal/handler"
	"github.com/stemsi/evaluation-backend/internal/middleware"
	"github.com/stemsi/evaluation-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Health     *handler.HealthHandler
	Subject    *handler.SubjectHandler
	Competency *handler.CompetencyHandler
	Export     *handler.ExportHandler
	Events     *handler.EventsHandler
}

// SetupRouter configures the route table. ctx bounds background middleware
// goroutines such as the rate limiter sweeper.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.Recovery(log))

	// Apply request ID middleware globally so every response includes it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// XLSX is already zip-compressed.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		SkipPaths: []string{cfg.APIPrefix + "/export"},
	}))

	// Must run inside brotli so error envelopes are compressed too.
	router.Use(middleware.ErrorHandler(log))

	router.NoRoute(middleware.RouteNotFound(log))

	// Optional per-IP limit on mutating requests.
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{h}
	}
	if cfg.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)
		write = func(h gin.HandlerFunc) []gin.HandlerFunc {
			return []gin.HandlerFunc{limiter.Middleware(), h}
		}
	}

	api := router.Group(cfg.APIPrefix)
	api.Use(middleware.NoStore())

	api.GET("/health", handlers.Health.Check)

	// ─── Subjects ──────────────────────────────────────────────────────
	subjects := api.Group("/subjects")
	{
		subjects.GET("", handlers.Subject.GetAll)
		subjects.GET("/:id", handlers.Subject.GetByID)
		subjects.GET("/:id/competencies", handlers.Competency.GetBySubject)
		subjects.POST("", write(handlers.Subject.Create)...)
		subjects.PUT("/:id", write(handlers.Subject.Update)...)
		subjects.DELETE("/:id", write(handlers.Subject.Delete)...)
	}

	// ─── Competencies ──────────────────────────────────────────────────
	competencies := api.Group("/competencies")
	{
		competencies.GET("", handlers.Competency.GetAll)
		competencies.GET("/subject/:subjectId", handlers.Competency.GetBySubject)
		competencies.GET("/:id", handlers.Competency.GetByID)
		competencies.POST("", write(handlers.Competency.Create)...)
		competencies.PUT("/:id", write(handlers.Competency.Update)...)
		competencies.DELETE("/:id", write(handlers.Competency.Delete)...)
	}

	api.GET("/export", handlers.Export.Workbook)
	api.GET("/events", handlers.Events.Stream)

	return router
}
