package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/handler/dto"
	"github.com/arzfeed/pricegate-api/internal/service"
)

const adminKeyListLimit = 200

type AdminHandler struct {
	keys   *service.KeyService
	logger *zap.Logger
}

func NewAdminHandler(keys *service.KeyService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		keys:   keys,
		logger: logger.Named("AdminHandler"),
	}
}

func (h *AdminHandler) ListKeys(c *gin.Context) {
	keys, err := h.keys.ListAll(c.Request.Context(), adminKeyListLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.AdminListKeysResponse{Keys: make([]dto.AdminKeyResponse, len(keys))}
	for i, k := range keys {
		resp.Keys[i] = dto.AdminKeyResponse{
			ID:        k.ID,
			Masked:    k.Masked(),
			Status:    string(k.Status),
			Email:     k.OwnerEmail,
			PlanSlug:  k.PlanSlug,
			CreatedAt: k.CreatedAt,
			RevokedAt: k.RevokedAt,
		}
	}

	c.JSON(http.StatusOK, resp)
}
