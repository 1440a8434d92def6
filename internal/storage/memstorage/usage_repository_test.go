package memstorage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzfeed/pricegate-api/internal/domain/usage"
)

func TestCheckAndIncrementSequential(t *testing.T) {
	repo := NewUsageRepository()
	keyID := uuid.New()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		rec, err := repo.CheckAndIncrement(ctx, keyID, "2026-08", 3)
		require.NoError(t, err)
		assert.Equal(t, want, rec.RequestCount)
		assert.Equal(t, int64(3), rec.MonthlyQuota)
		assert.Equal(t, 3-want, rec.Remaining())
	}

	rec, err := repo.CheckAndIncrement(ctx, keyID, "2026-08", 3)
	assert.ErrorIs(t, err, usage.ErrQuotaExceeded)
	assert.Equal(t, int64(3), rec.RequestCount)
	assert.Equal(t, int64(0), rec.Remaining())
}

// Fires 10x quota concurrent requests: exactly quota must be accepted, the
// rest rejected, and the final count must equal the quota.
func TestCheckAndIncrementConcurrent(t *testing.T) {
	repo := NewUsageRepository()
	keyID := uuid.New()
	ctx := context.Background()

	const quota = int64(50)
	const callers = 10 * quota

	var accepted, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := int64(0); i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CheckAndIncrement(ctx, keyID, "2026-08", quota)
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, usage.ErrQuotaExceeded):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, quota, accepted.Load())
	assert.Equal(t, callers-quota, rejected.Load())

	rec, err := repo.Get(ctx, keyID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, quota, rec.RequestCount)
	assert.Equal(t, int64(0), rec.Remaining())
}

func TestGetNoUsage(t *testing.T) {
	repo := NewUsageRepository()

	_, err := repo.Get(context.Background(), uuid.New(), "2026-08")
	assert.ErrorIs(t, err, usage.ErrNoUsage)
}

func TestAddQuota(t *testing.T) {
	repo := NewUsageRepository()
	keyID := uuid.New()
	ctx := context.Background()

	// Top-up on a month with no prior usage creates the row.
	rec, err := repo.AddQuota(ctx, keyID, "2026-08", 5, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.MonthlyQuota)
	assert.Equal(t, int64(0), rec.RequestCount)

	// The raised snapshot governs subsequent increments.
	for i := 0; i < 10; i++ {
		_, err := repo.CheckAndIncrement(ctx, keyID, "2026-08", 5)
		require.NoError(t, err)
	}
	_, err = repo.CheckAndIncrement(ctx, keyID, "2026-08", 5)
	assert.ErrorIs(t, err, usage.ErrQuotaExceeded)

	// Prior months are untouched.
	_, err = repo.Get(ctx, keyID, "2026-07")
	assert.ErrorIs(t, err, usage.ErrNoUsage)
}

func TestAddQuotaAfterExhaustion(t *testing.T) {
	repo := NewUsageRepository()
	keyID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.CheckAndIncrement(ctx, keyID, "2026-08", 5)
		require.NoError(t, err)
	}
	_, err := repo.CheckAndIncrement(ctx, keyID, "2026-08", 5)
	require.ErrorIs(t, err, usage.ErrQuotaExceeded)

	_, err = repo.AddQuota(ctx, keyID, "2026-08", 5, 5)
	require.NoError(t, err)

	rec, err := repo.CheckAndIncrement(ctx, keyID, "2026-08", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), rec.RequestCount)
	assert.Equal(t, int64(4), rec.Remaining())
}

func TestRemainingInvariant(t *testing.T) {
	rec := &usage.Record{RequestCount: 7, MonthlyQuota: 5}
	assert.Equal(t, int64(0), rec.Remaining())

	rec = &usage.Record{RequestCount: 2, MonthlyQuota: 5}
	assert.Equal(t, int64(3), rec.Remaining())
	assert.Equal(t, rec.MonthlyQuota, rec.Remaining()+rec.RequestCount)
}
