package dto

import "github.com/arzfeed/pricegate-api/internal/domain/usage"

type UsageResponse struct {
	Month        string   `json:"month"`
	RequestCount int64    `json:"request_count"`
	MonthlyQuota int64    `json:"monthly_quota"`
	Remaining    int64    `json:"remaining"`
	Plan         *PlanRef `json:"plan,omitempty"`
}

type PriceResponse struct {
	Data        map[string]string `json:"data"`
	LastUpdated string            `json:"last_updated"`
	Status      string            `json:"status"`
	Usage       *UsageResponse    `json:"usage,omitempty"`
}

func NewUsageResponse(rec *usage.Record, planRef *PlanRef) *UsageResponse {
	return &UsageResponse{
		Month:        rec.Month,
		RequestCount: rec.RequestCount,
		MonthlyQuota: rec.MonthlyQuota,
		Remaining:    rec.Remaining(),
		Plan:         planRef,
	}
}
