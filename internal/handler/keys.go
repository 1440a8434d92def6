package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/handler/dto"
	"github.com/arzfeed/pricegate-api/internal/handler/middleware"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/service"
)

// KeysHandler serves the bearer-authenticated account's key management:
// masked listing and quota top-ups.
type KeysHandler struct {
	keys   *service.KeyService
	usage  *service.UsageService
	logger *zap.Logger
}

func NewKeysHandler(keys *service.KeyService, usage *service.UsageService, logger *zap.Logger) *KeysHandler {
	return &KeysHandler{
		keys:   keys,
		usage:  usage,
		logger: logger.Named("KeysHandler"),
	}
}

func (h *KeysHandler) List(c *gin.Context) {
	claims := middleware.GetAccountClaims(c)
	if claims == nil {
		_ = c.Error(ierr.ErrUnauthenticated)
		return
	}

	keys, err := h.keys.ListForOwner(c.Request.Context(), claims.Subject)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.ListKeysResponse{Keys: make([]dto.APIKeyResponse, len(keys))}
	for i, k := range keys {
		resp.Keys[i] = dto.NewAPIKeyResponse(k)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *KeysHandler) AddRequests(c *gin.Context) {
	claims := middleware.GetAccountClaims(c)
	if claims == nil {
		_ = c.Error(ierr.ErrUnauthenticated)
		return
	}

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid UUID format for key top-up", zap.String("id_param", idStr))
		_ = c.Error(fmt.Errorf("%w: invalid api key id format", ierr.ErrValidation))
		return
	}

	var req dto.AddRequestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	rec, err := h.usage.AddRequests(c.Request.Context(), id, claims.Subject, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUsageResponse(rec, nil))
}
