package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/handler/dto"
	"github.com/arzfeed/pricegate-api/internal/service"
)

type PlanHandler struct {
	catalog *service.CatalogService
	logger  *zap.Logger
}

func NewPlanHandler(catalog *service.CatalogService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		catalog: catalog,
		logger:  logger.Named("PlanHandler"),
	}
}

func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.catalog.ListPlans(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.ListPlansResponse{Plans: make([]dto.PlanResponse, len(plans))}
	for i, p := range plans {
		resp.Plans[i] = dto.NewPlanResponse(p)
	}

	c.JSON(http.StatusOK, resp)
}
