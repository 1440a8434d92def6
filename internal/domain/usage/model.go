package usage

import (
	"time"

	"github.com/google/uuid"
)

// Record is the per-key, per-calendar-month ledger row. MonthlyQuota is a
// snapshot taken when the row is created, so a later plan change never
// rewrites an in-progress month.
type Record struct {
	APIKeyID     uuid.UUID `db:"api_key_id" json:"api_key_id"`
	Month        string    `db:"month" json:"month"`
	RequestCount int64     `db:"request_count" json:"request_count"`
	MonthlyQuota int64     `db:"monthly_quota" json:"monthly_quota"`
}

// Remaining is clamped at zero.
func (r *Record) Remaining() int64 {
	if rem := r.MonthlyQuota - r.RequestCount; rem > 0 {
		return rem
	}
	return 0
}

// MonthKey renders t as the ledger's YYYY-MM composite key part.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CurrentMonth is the ledger key for now.
func CurrentMonth() string {
	return MonthKey(time.Now())
}
