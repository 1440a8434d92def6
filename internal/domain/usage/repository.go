package usage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNoUsage means no request has been charged this month. Callers
	// report a zero count, not a failure.
	ErrNoUsage = errors.New("no usage recorded for month")

	// ErrQuotaExceeded carries the current record alongside it so callers
	// can report counts in the rejection.
	ErrQuotaExceeded = errors.New("monthly quota exceeded")
)

type Repository interface {
	// CheckAndIncrement atomically charges one request against the key's
	// month. The row is created lazily with planQuota as its snapshot.
	// Under concurrent callers the accepted count never exceeds the
	// snapshot and no accepted request is lost. On ErrQuotaExceeded the
	// returned record reflects the untouched current counts.
	CheckAndIncrement(ctx context.Context, keyID uuid.UUID, month string, planQuota int64) (*Record, error)

	Get(ctx context.Context, keyID uuid.UUID, month string) (*Record, error)

	// AddQuota raises the month's quota snapshot by delta, creating the
	// row (with planQuota+delta) if it does not exist yet. Prior months
	// are never touched.
	AddQuota(ctx context.Context, keyID uuid.UUID, month string, planQuota, delta int64) (*Record, error)
}
