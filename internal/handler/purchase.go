package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/handler/dto"
	"github.com/arzfeed/pricegate-api/internal/handler/middleware"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/service"
)

type PurchaseHandler struct {
	provisioning *service.ProvisioningService
	logger       *zap.Logger
}

func NewPurchaseHandler(provisioning *service.ProvisioningService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		provisioning: provisioning,
		logger:       logger.Named("PurchaseHandler"),
	}
}

// PurchaseAuthenticated mints a key for the bearer-authenticated account.
func (h *PurchaseHandler) PurchaseAuthenticated(c *gin.Context) {
	claims := middleware.GetAccountClaims(c)
	if claims == nil {
		_ = c.Error(ierr.ErrUnauthenticated)
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind purchase request", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	minted, err := h.provisioning.Purchase(c.Request.Context(), service.PurchaseParams{
		OwnerAccountID: claims.Subject,
		Email:          claims.Email,
		PlanSlug:       req.PlanSlug,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, mintedResponse(minted))
}

// PurchaseDemo is the unauthenticated fallback: email-keyed, flag-gated and
// without billing authority.
func (h *PurchaseHandler) PurchaseDemo(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind demo purchase request", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	minted, err := h.provisioning.Purchase(c.Request.Context(), service.PurchaseParams{
		Email:    req.Email,
		PlanSlug: req.PlanSlug,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, mintedResponse(minted))
}

func mintedResponse(minted *service.MintedKey) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		APIKey:    minted.FullKey,
		APIKeyID:  minted.Key.ID,
		Masked:    minted.Key.Masked(),
		APIURL:    minted.APIBaseURL,
		Plan:      dto.PlanRef{Slug: minted.Plan.Slug, Name: minted.Plan.Name},
		CreatedAt: minted.Key.CreatedAt,
	}
}
