package upstream

import "github.com/arzfeed/pricegate-api/internal/domain/plan"

var scopeKeys = map[plan.Scope][]string{
	plan.ScopeCurrency: {
		"usd", "eur", "gbp", "chf", "cad", "aud", "sek", "nok", "rub", "thb",
		"sgd", "hkd", "azn", "amd", "dkk", "aed", "jpy", "try", "cny", "sar",
		"inr", "myr", "afn", "kwd", "iqd", "bhd", "omr", "qar",
	},
	plan.ScopeCrypto: {"bitcoin"},
	plan.ScopeGold: {
		"gold_ounce", "gold_gram_18k", "gold_mithqal", "coin_emami",
		"coin_azadi", "coin_half", "coin_quarter", "coin_gram",
	},
}

// FilterScope narrows a feed payload to the entries a plan scope entitles.
// ScopeAll passes the payload through untouched.
func FilterScope(data map[string]string, scope plan.Scope) map[string]string {
	if scope == plan.ScopeAll || scope == "" {
		return data
	}

	keys, ok := scopeKeys[scope]
	if !ok {
		return map[string]string{}
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, exists := data[k]; exists {
			out[k] = v
		}
	}
	return out
}
