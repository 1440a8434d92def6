package plan

import (
	"fmt"
	"time"
)

// Scope is the subset of price data a plan entitles access to.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeCurrency Scope = "currency"
	ScopeCrypto   Scope = "crypto"
	ScopeGold     Scope = "gold"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeAll, ScopeCurrency, ScopeCrypto, ScopeGold:
		return Scope(s), nil
	case "":
		return ScopeAll, nil
	}
	return "", fmt.Errorf("invalid scope %q", s)
}

type Plan struct {
	Slug         string    `db:"slug" json:"slug"`
	Name         string    `db:"name" json:"name"`
	Scope        Scope     `db:"scope" json:"scope"`
	MonthlyQuota int64     `db:"monthly_quota" json:"monthly_quota"`
	RPMLimit     int       `db:"rpm_limit" json:"rpm_limit"`
	PriceIRR     int64     `db:"price_irr" json:"price_irr"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DefaultPlans seeds an empty catalog. Quotas and limits for a slug with
// live keys must not be edited in place; a plan change is a new slug.
var DefaultPlans = []Plan{
	{Slug: "starter", Name: "Starter", Scope: ScopeAll, MonthlyQuota: 300_000, RPMLimit: 120, PriceIRR: 0, Active: true},
	{Slug: "business", Name: "Business", Scope: ScopeAll, MonthlyQuota: 1_000_000, RPMLimit: 600, PriceIRR: 0, Active: true},
	{Slug: "enterprise", Name: "Enterprise", Scope: ScopeAll, MonthlyQuota: 10_000_000, RPMLimit: 2_000, PriceIRR: 0, Active: true},
}
