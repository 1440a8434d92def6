package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/plan"
	"github.com/arzfeed/pricegate-api/internal/domain/usage"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/metrics"
	"github.com/arzfeed/pricegate-api/internal/ratelimit"
	"github.com/arzfeed/pricegate-api/internal/upstream"
)

// GatewayService runs the metered request pipeline: authenticate the key,
// rate-limit, charge the monthly ledger, then proxy upstream. The rate
// check comes first so a throttled caller never touches the ledger, and no
// lock is held while the upstream fetch blocks on the network. A usage
// increment is never rolled back: billing is for admission, not delivery.
type GatewayService struct {
	keys    *KeyService
	plans   plan.Repository
	ledger  usage.Repository
	limiter ratelimit.Limiter
	feed    *upstream.Feed
	logger  *zap.Logger
}

func NewGatewayService(keys *KeyService, plans plan.Repository, ledger usage.Repository, limiter ratelimit.Limiter, feed *upstream.Feed, logger *zap.Logger) *GatewayService {
	return &GatewayService{
		keys:    keys,
		plans:   plans,
		ledger:  ledger,
		limiter: limiter,
		feed:    feed,
		logger:  logger.Named("GatewayService"),
	}
}

// PriceResult carries the scope-filtered payload on success, and the
// rejection detail (current usage, retry hint) on the two 429 kinds.
type PriceResult struct {
	Data        map[string]string
	LastUpdated string
	Status      string
	Usage       *usage.Record
	RetryAfter  int
}

func (s *GatewayService) FetchPrices(ctx context.Context, presentedKey string) (*PriceResult, error) {
	key, err := s.keys.Authenticate(ctx, presentedKey)
	if err != nil {
		if errors.Is(err, ierr.ErrUnauthenticated) {
			metrics.GatewayRequests.WithLabelValues(metrics.OutcomeUnauthenticated).Inc()
		}
		return nil, err
	}

	p, err := s.plans.FindBySlug(ctx, key.PlanSlug)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			// A key bound to a deactivated plan stops validating, same as
			// a revoked key.
			metrics.GatewayRequests.WithLabelValues(metrics.OutcomeUnauthenticated).Inc()
			return nil, ierr.ErrUnauthenticated
		}
		s.logger.Error("Failed to load plan for key", zap.String("key_id", key.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: plan lookup failed", ierr.ErrInternalServer)
	}

	decision, err := s.limiter.Admit(ctx, key.ID.String(), p.RPMLimit)
	if err != nil {
		s.logger.Error("Rate limiter failure", zap.String("key_id", key.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: admission check failed", ierr.ErrInternalServer)
	}
	if !decision.Allowed {
		metrics.GatewayRequests.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		return &PriceResult{RetryAfter: decision.RetryAfterSeconds}, ierr.ErrRateLimited
	}

	rec, err := s.ledger.CheckAndIncrement(ctx, key.ID, usage.CurrentMonth(), p.MonthlyQuota)
	if err != nil {
		if errors.Is(err, usage.ErrQuotaExceeded) {
			metrics.GatewayRequests.WithLabelValues(metrics.OutcomeQuotaExceeded).Inc()
			return &PriceResult{Usage: rec}, ierr.ErrQuotaExceeded
		}
		s.logger.Error("Usage increment failed", zap.String("key_id", key.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: usage accounting failed", ierr.ErrInternalServer)
	}

	snap, err := s.feed.Latest(ctx)
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
		metrics.UpstreamFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.GatewayRequests.WithLabelValues(metrics.OutcomeAccepted).Inc()
	metrics.UpstreamFetches.WithLabelValues("ok").Inc()

	return &PriceResult{
		Data:        upstream.FilterScope(snap.Data, p.Scope),
		LastUpdated: snap.LastUpdated,
		Status:      snap.Status,
		Usage:       rec,
	}, nil
}
