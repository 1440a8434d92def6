package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type HealthHandler struct {
	db     *pgxpool.Pool
	redis  *redis.Client
	logger *zap.Logger
}

// NewHealthHandler accepts nil dependencies; a demo deployment without
// PostgreSQL or Redis reports only what it runs.
func NewHealthHandler(db *pgxpool.Pool, redis *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redis,
		logger: logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	deps := gin.H{}
	healthy := true

	if h.db != nil {
		dbStatus := "ok"
		if err := h.db.Ping(c.Request.Context()); err != nil {
			dbStatus = "error"
			healthy = false
			h.logger.Error("Health check: PostgreSQL ping failed", zap.Error(err))
		}
		deps["database"] = dbStatus
	}

	if h.redis != nil {
		redisStatus := "ok"
		if _, err := h.redis.Ping(c.Request.Context()).Result(); err != nil {
			redisStatus = "error"
			healthy = false
			h.logger.Error("Health check: Redis ping failed", zap.Error(err))
		}
		deps["redis"] = redisStatus
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "dependencies": deps})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": deps})
}
