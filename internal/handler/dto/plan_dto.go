package dto

import "github.com/arzfeed/pricegate-api/internal/domain/plan"

type PlanResponse struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Scope        string `json:"scope"`
	MonthlyQuota int64  `json:"monthly_quota"`
	RPMLimit     int    `json:"rpm_limit"`
	PriceIRR     int64  `json:"price_irr"`
}

type ListPlansResponse struct {
	Plans []PlanResponse `json:"plans"`
}

type PlanRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func NewPlanResponse(p plan.Plan) PlanResponse {
	return PlanResponse{
		Slug:         p.Slug,
		Name:         p.Name,
		Scope:        string(p.Scope),
		MonthlyQuota: p.MonthlyQuota,
		RPMLimit:     p.RPMLimit,
		PriceIRR:     p.PriceIRR,
	}
}
