package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/handler/dto"
	"github.com/arzfeed/pricegate-api/internal/handler/middleware"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/service"
)

// SelfKeyHandler serves the key-authenticated self-service routes: usage
// inspection and rotation. Neither is metered against the quota.
type SelfKeyHandler struct {
	keys   *service.KeyService
	usage  *service.UsageService
	logger *zap.Logger
}

func NewSelfKeyHandler(keys *service.KeyService, usage *service.UsageService, logger *zap.Logger) *SelfKeyHandler {
	return &SelfKeyHandler{
		keys:   keys,
		usage:  usage,
		logger: logger.Named("SelfKeyHandler"),
	}
}

func (h *SelfKeyHandler) Usage(c *gin.Context) {
	key := middleware.GetAuthenticatedKey(c)
	if key == nil {
		_ = c.Error(ierr.ErrUnauthenticated)
		return
	}

	rec, currentPlan, err := h.usage.CurrentUsage(c.Request.Context(), key)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUsageResponse(rec, &dto.PlanRef{Slug: currentPlan.Slug, Name: currentPlan.Name}))
}

func (h *SelfKeyHandler) Rotate(c *gin.Context) {
	key := middleware.GetAuthenticatedKey(c)
	if key == nil {
		_ = c.Error(ierr.ErrUnauthenticated)
		return
	}

	rotated, fullKey, err := h.keys.Rotate(c.Request.Context(), key.ID, key.OwnerAccountID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Self-service rotation completed", zap.String("key_id", rotated.ID.String()))
	c.JSON(http.StatusOK, dto.RotateResponse{
		APIKey:    fullKey,
		APIKeyID:  rotated.ID,
		Masked:    rotated.Masked(),
		CreatedAt: rotated.CreatedAt,
	})
}
