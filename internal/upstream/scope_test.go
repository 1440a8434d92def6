package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arzfeed/pricegate-api/internal/domain/plan"
)

func TestFilterScope(t *testing.T) {
	data := map[string]string{
		"usd":        "1,043,200",
		"eur":        "1,214,900",
		"bitcoin":    "6,905,110,000",
		"gold_ounce": "3,448.10",
		"coin_emami": "978,500,000",
		"unknown":    "42",
	}

	tests := []struct {
		name  string
		scope plan.Scope
		want  []string
	}{
		{"all passes everything through", plan.ScopeAll, []string{"usd", "eur", "bitcoin", "gold_ounce", "coin_emami", "unknown"}},
		{"currency", plan.ScopeCurrency, []string{"usd", "eur"}},
		{"crypto", plan.ScopeCrypto, []string{"bitcoin"}},
		{"gold", plan.ScopeGold, []string{"gold_ounce", "coin_emami"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterScope(data, tt.scope)
			assert.Len(t, got, len(tt.want))
			for _, k := range tt.want {
				assert.Equal(t, data[k], got[k])
			}
		})
	}
}

func TestFilterScopeEmptyScope(t *testing.T) {
	data := map[string]string{"usd": "1"}
	assert.Equal(t, data, FilterScope(data, ""))
}

func TestFilterScopeUnknownScope(t *testing.T) {
	got := FilterScope(map[string]string{"usd": "1"}, plan.Scope("nonsense"))
	assert.Empty(t, got)
}

func TestFilterScopeMissingKeys(t *testing.T) {
	// Feed outages can drop entries; the filter only returns what exists.
	got := FilterScope(map[string]string{"usd": "1"}, plan.ScopeGold)
	assert.Empty(t, got)
}
