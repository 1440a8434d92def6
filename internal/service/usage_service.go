package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
	"github.com/arzfeed/pricegate-api/internal/domain/usage"
	"github.com/arzfeed/pricegate-api/internal/ierr"
)

type UsageService struct {
	ledger  usage.Repository
	catalog *CatalogService
	keys    *KeyService
	logger  *zap.Logger
}

func NewUsageService(ledger usage.Repository, catalog *CatalogService, keys *KeyService, logger *zap.Logger) *UsageService {
	return &UsageService{
		ledger:  ledger,
		catalog: catalog,
		keys:    keys,
		logger:  logger.Named("UsageService"),
	}
}

// CurrentUsage reports the key's ledger row for this month. A month with no
// charged requests reads as a zero row against the plan's quota, not an
// error.
func (s *UsageService) CurrentUsage(ctx context.Context, key *apikey.APIKey) (*usage.Record, *CurrentPlan, error) {
	p, err := s.catalog.FindPlan(ctx, key.PlanSlug)
	if err != nil {
		return nil, nil, err
	}

	month := usage.CurrentMonth()
	rec, err := s.ledger.Get(ctx, key.ID, month)
	if err != nil {
		if errors.Is(err, usage.ErrNoUsage) {
			rec = &usage.Record{APIKeyID: key.ID, Month: month, RequestCount: 0, MonthlyQuota: p.MonthlyQuota}
		} else {
			s.logger.Error("Failed to read usage record", zap.String("key_id", key.ID.String()), zap.Error(err))
			return nil, nil, fmt.Errorf("repository error reading usage: %w", err)
		}
	}

	return rec, &CurrentPlan{Slug: p.Slug, Name: p.Name, Scope: string(p.Scope)}, nil
}

type CurrentPlan struct {
	Slug  string
	Name  string
	Scope string
}

// AddRequests tops up the current month's quota snapshot for a key the
// caller owns. Prior months are never touched.
func (s *UsageService) AddRequests(ctx context.Context, keyID uuid.UUID, ownerAccountID string, amount int64) (*usage.Record, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ierr.ErrValidation)
	}

	key, err := s.keys.FindByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if key.OwnerAccountID != ownerAccountID {
		s.logger.Warn("Quota top-up denied for non-owner",
			zap.String("key_id", keyID.String()),
			zap.String("caller", ownerAccountID),
		)
		return nil, fmt.Errorf("%w: key belongs to another account", ierr.ErrForbidden)
	}

	p, err := s.catalog.FindPlan(ctx, key.PlanSlug)
	if err != nil {
		return nil, err
	}

	rec, err := s.ledger.AddQuota(ctx, keyID, usage.CurrentMonth(), p.MonthlyQuota, amount)
	if err != nil {
		return nil, fmt.Errorf("repository error adding quota: %w", err)
	}

	s.logger.Info("Quota top-up applied",
		zap.String("key_id", keyID.String()),
		zap.Int64("amount", amount),
		zap.Int64("monthly_quota", rec.MonthlyQuota),
	)
	return rec, nil
}
