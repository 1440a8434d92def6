package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/handler/dto"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/service"
)

// PricesHandler is the metered gateway surface. It renders the admission
// rejections itself so the two 429 kinds stay distinguishable by body.
type PricesHandler struct {
	gateway *service.GatewayService
	logger  *zap.Logger
}

func NewPricesHandler(gateway *service.GatewayService, logger *zap.Logger) *PricesHandler {
	return &PricesHandler{
		gateway: gateway,
		logger:  logger.Named("PricesHandler"),
	}
}

// GetPrices authenticates by the x-api-key header.
func (h *PricesHandler) GetPrices(c *gin.Context) {
	h.serve(c, c.GetHeader("X-API-Key"))
}

// GetPricesByPathKey authenticates by the key path segment.
func (h *PricesHandler) GetPricesByPathKey(c *gin.Context) {
	h.serve(c, c.Param("key"))
}

func (h *PricesHandler) serve(c *gin.Context, presentedKey string) {
	result, err := h.gateway.FetchPrices(c.Request.Context(), presentedKey)
	if err != nil {
		h.renderDenial(c, result, err)
		return
	}

	c.JSON(http.StatusOK, dto.PriceResponse{
		Data:        result.Data,
		LastUpdated: result.LastUpdated,
		Status:      result.Status,
		Usage:       dto.NewUsageResponse(result.Usage, nil),
	})
}

func (h *PricesHandler) renderDenial(c *gin.Context, result *service.PriceResult, err error) {
	switch {
	case errors.Is(err, ierr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, dto.APIErrorResponse{
			Code:    "UNAUTHENTICATED",
			Message: "Invalid or missing API key.",
		})
	case errors.Is(err, ierr.ErrRateLimited):
		retryAfter := 0
		if result != nil {
			retryAfter = result.RetryAfter
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, dto.ThrottleResponse{
			Code:              "RATE_LIMITED",
			Message:           "Per-minute rate limit exceeded. Retry shortly.",
			Reason:            dto.ThrottleReasonRateLimited,
			RetryAfterSeconds: retryAfter,
		})
	case errors.Is(err, ierr.ErrQuotaExceeded):
		var usageBody *dto.UsageResponse
		if result != nil && result.Usage != nil {
			usageBody = dto.NewUsageResponse(result.Usage, nil)
		}
		c.JSON(http.StatusTooManyRequests, dto.ThrottleResponse{
			Code:    "QUOTA_EXCEEDED",
			Message: "Monthly quota exhausted. Purchase additional requests or wait for the month rollover.",
			Reason:  dto.ThrottleReasonQuotaExceeded,
			Usage:   usageBody,
		})
	case errors.Is(err, ierr.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.APIErrorResponse{
			Code:    "UPSTREAM_UNAVAILABLE",
			Message: "The price feed is temporarily unavailable.",
		})
	default:
		h.logger.Error("Gateway request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.APIErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred.",
		})
	}
}
