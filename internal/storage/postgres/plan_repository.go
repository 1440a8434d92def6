package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/plan"
)

type PlanRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPlanRepository(db *pgxpool.Pool, logger *zap.Logger) *PlanRepository {
	return &PlanRepository{
		db:     db,
		logger: logger.Named("PlanRepository"),
	}
}

var _ plan.Repository = (*PlanRepository)(nil)

func (r *PlanRepository) List(ctx context.Context) ([]plan.Plan, error) {
	query := `
		SELECT slug, name, scope, monthly_quota, rpm_limit, price_irr, active, created_at
		FROM plans
		WHERE active = TRUE
		ORDER BY price_irr ASC, slug ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list plans", zap.Error(err))
		return nil, fmt.Errorf("db error listing plans: %w", err)
	}
	defer rows.Close()

	var plans []plan.Plan
	for rows.Next() {
		var p plan.Plan
		if err := rows.Scan(&p.Slug, &p.Name, &p.Scope, &p.MonthlyQuota, &p.RPMLimit, &p.PriceIRR, &p.Active, &p.CreatedAt); err != nil {
			r.logger.Error("Failed to scan plan row", zap.Error(err))
			return nil, fmt.Errorf("db error scanning plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating plans: %w", err)
	}

	return plans, nil
}

func (r *PlanRepository) FindBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	query := `
		SELECT slug, name, scope, monthly_quota, rpm_limit, price_irr, active, created_at
		FROM plans
		WHERE slug = $1 AND active = TRUE
	`
	var p plan.Plan
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&p.Slug, &p.Name, &p.Scope, &p.MonthlyQuota, &p.RPMLimit, &p.PriceIRR, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Plan not found or inactive", zap.String("slug", slug))
			return nil, plan.ErrPlanNotFound
		}
		r.logger.Error("Failed to find plan by slug", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("db error finding plan: %w", err)
	}

	return &p, nil
}

// SeedDefaultPlans inserts the default catalog into an empty plans table.
func (r *PlanRepository) SeedDefaultPlans(ctx context.Context) error {
	query := `
		INSERT INTO plans (slug, name, scope, monthly_quota, rpm_limit, price_irr, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slug) DO NOTHING
	`
	for _, p := range plan.DefaultPlans {
		if _, err := r.db.Exec(ctx, query, p.Slug, p.Name, p.Scope, p.MonthlyQuota, p.RPMLimit, p.PriceIRR, p.Active); err != nil {
			r.logger.Error("Failed to seed plan", zap.String("slug", p.Slug), zap.Error(err))
			return fmt.Errorf("db error seeding plan %s: %w", p.Slug, err)
		}
	}
	r.logger.Info("Default plans seeded", zap.Int("count", len(plan.DefaultPlans)))
	return nil
}
