package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/usage"
)

type UsageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUsageRepository(db *pgxpool.Pool, logger *zap.Logger) *UsageRepository {
	return &UsageRepository{
		db:     db,
		logger: logger.Named("UsageRepository"),
	}
}

var _ usage.Repository = (*UsageRepository)(nil)

// CheckAndIncrement is a single conditional upsert: the increment lands only
// while request_count is below the month's quota snapshot, so the storage
// layer is the serialization point and no per-key lock is needed here.
func (r *UsageRepository) CheckAndIncrement(ctx context.Context, keyID uuid.UUID, month string, planQuota int64) (*usage.Record, error) {
	if planQuota <= 0 {
		rec, err := r.currentOrZero(ctx, keyID, month, planQuota)
		if err != nil {
			return nil, err
		}
		return rec, usage.ErrQuotaExceeded
	}

	query := `
		INSERT INTO usage_monthly (api_key_id, month, request_count, monthly_quota)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (api_key_id, month) DO UPDATE
		SET request_count = usage_monthly.request_count + 1
		WHERE usage_monthly.request_count < usage_monthly.monthly_quota
		RETURNING request_count, monthly_quota
	`
	rec := &usage.Record{APIKeyID: keyID, Month: month}
	err := r.db.QueryRow(ctx, query, keyID, month, planQuota).Scan(&rec.RequestCount, &rec.MonthlyQuota)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The WHERE clause rejected the update: quota is spent.
			current, getErr := r.currentOrZero(ctx, keyID, month, planQuota)
			if getErr != nil {
				return nil, getErr
			}
			r.logger.Debug("Quota exhausted for key",
				zap.String("api_key_id", keyID.String()),
				zap.String("month", month),
				zap.Int64("request_count", current.RequestCount),
			)
			return current, usage.ErrQuotaExceeded
		}
		r.logger.Error("Failed to increment usage", zap.String("api_key_id", keyID.String()), zap.Error(err))
		return nil, fmt.Errorf("db error incrementing usage: %w", err)
	}

	return rec, nil
}

func (r *UsageRepository) Get(ctx context.Context, keyID uuid.UUID, month string) (*usage.Record, error) {
	query := `
		SELECT request_count, monthly_quota
		FROM usage_monthly
		WHERE api_key_id = $1 AND month = $2
	`
	rec := &usage.Record{APIKeyID: keyID, Month: month}
	err := r.db.QueryRow(ctx, query, keyID, month).Scan(&rec.RequestCount, &rec.MonthlyQuota)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, usage.ErrNoUsage
		}
		r.logger.Error("Failed to get usage record", zap.String("api_key_id", keyID.String()), zap.Error(err))
		return nil, fmt.Errorf("db error getting usage: %w", err)
	}

	return rec, nil
}

func (r *UsageRepository) AddQuota(ctx context.Context, keyID uuid.UUID, month string, planQuota, delta int64) (*usage.Record, error) {
	query := `
		INSERT INTO usage_monthly (api_key_id, month, request_count, monthly_quota)
		VALUES ($1, $2, 0, $3 + $4)
		ON CONFLICT (api_key_id, month) DO UPDATE
		SET monthly_quota = usage_monthly.monthly_quota + $4
		RETURNING request_count, monthly_quota
	`
	rec := &usage.Record{APIKeyID: keyID, Month: month}
	err := r.db.QueryRow(ctx, query, keyID, month, planQuota, delta).Scan(&rec.RequestCount, &rec.MonthlyQuota)
	if err != nil {
		r.logger.Error("Failed to add quota", zap.String("api_key_id", keyID.String()), zap.Error(err))
		return nil, fmt.Errorf("db error adding quota: %w", err)
	}

	r.logger.Info("Quota topped up",
		zap.String("api_key_id", keyID.String()),
		zap.String("month", month),
		zap.Int64("delta", delta),
		zap.Int64("monthly_quota", rec.MonthlyQuota),
	)
	return rec, nil
}

func (r *UsageRepository) currentOrZero(ctx context.Context, keyID uuid.UUID, month string, planQuota int64) (*usage.Record, error) {
	rec, err := r.Get(ctx, keyID, month)
	if errors.Is(err, usage.ErrNoUsage) {
		return &usage.Record{APIKeyID: keyID, Month: month, RequestCount: 0, MonthlyQuota: planQuota}, nil
	}
	return rec, err
}
