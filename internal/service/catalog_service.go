package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/plan"
	"github.com/arzfeed/pricegate-api/internal/ierr"
)

type CatalogService struct {
	repo   plan.Repository
	logger *zap.Logger
}

func NewCatalogService(repo plan.Repository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger.Named("CatalogService"),
	}
}

// ListPlans returns the purchasable catalog in stable ascending-price
// order. A storage fault is a transient CatalogUnavailable, never a client
// fault.
func (s *CatalogService) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list plans from repository", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrCatalogUnavailable, err)
	}
	return plans, nil
}

func (s *CatalogService) FindPlan(ctx context.Context, slug string) (*plan.Plan, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return nil, fmt.Errorf("%w: %s", ierr.ErrUnknownPlan, slug)
		}
		s.logger.Error("Failed to find plan", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrCatalogUnavailable, err)
	}
	return p, nil
}
