package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// DBPinger is satisfied by *pgxpool.Pool.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthHandler struct {
	service   string
	db        DBPinger
	rdb       RedisPinger
	startTime time.Time
	log       zerolog.Logger
}

// NewHealthHandler creates a HealthHandler. rdb may be nil when Redis is not configured.
func NewHealthHandler(service string, db DBPinger, rdb RedisPinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		service:   service,
		db:        db,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

type healthStatus struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Uptime   string `json:"uptime"`
}

// Check godoc
// GET /api/health
// Storage is required; Redis only degrades the change feed.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := healthStatus{
		Status:   "OK",
		Service:  h.service,
		Database: "up",
		Redis:    "disabled",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error().Err(err).Msg("Database health check failed")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "Database is unavailable")
		return
	}

	if h.rdb != nil {
		status.Redis = "up"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			h.log.Warn().Err(err).Msg("Redis health check failed")
			status.Redis = "down"
			status.Status = "DEGRADED"
		}
	}

	response.Success(c, http.StatusOK, "Service is healthy", status)
}
