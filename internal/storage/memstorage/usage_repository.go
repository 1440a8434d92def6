package memstorage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/arzfeed/pricegate-api/internal/domain/usage"
)

type usageKey struct {
	keyID uuid.UUID
	month string
}

// UsageRepository serializes check-and-increment behind one mutex, giving
// the same never-overcount guarantee as the conditional SQL upsert.
type UsageRepository struct {
	mu      sync.Mutex
	records map[usageKey]*usage.Record
}

func NewUsageRepository() *UsageRepository {
	return &UsageRepository{records: make(map[usageKey]*usage.Record)}
}

var _ usage.Repository = (*UsageRepository)(nil)

func (r *UsageRepository) CheckAndIncrement(_ context.Context, keyID uuid.UUID, month string, planQuota int64) (*usage.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := usageKey{keyID: keyID, month: month}
	rec, ok := r.records[k]
	if !ok {
		rec = &usage.Record{APIKeyID: keyID, Month: month, MonthlyQuota: planQuota}
		r.records[k] = rec
	}

	if rec.RequestCount >= rec.MonthlyQuota {
		cp := *rec
		return &cp, usage.ErrQuotaExceeded
	}

	rec.RequestCount++
	cp := *rec
	return &cp, nil
}

func (r *UsageRepository) Get(_ context.Context, keyID uuid.UUID, month string) (*usage.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[usageKey{keyID: keyID, month: month}]
	if !ok {
		return nil, usage.ErrNoUsage
	}
	cp := *rec
	return &cp, nil
}

func (r *UsageRepository) AddQuota(_ context.Context, keyID uuid.UUID, month string, planQuota, delta int64) (*usage.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := usageKey{keyID: keyID, month: month}
	rec, ok := r.records[k]
	if !ok {
		rec = &usage.Record{APIKeyID: keyID, Month: month, MonthlyQuota: planQuota}
		r.records[k] = rec
	}
	rec.MonthlyQuota += delta

	cp := *rec
	return &cp, nil
}
