package memstorage

import (
	"context"
	"sort"
	"sync"

	"github.com/arzfeed/pricegate-api/internal/domain/plan"
)

// PlanRepository is an in-memory catalog used by tests and by demo
// deployments running without PostgreSQL.
type PlanRepository struct {
	mu    sync.RWMutex
	plans map[string]plan.Plan
}

func NewPlanRepository(plans []plan.Plan) *PlanRepository {
	byName := make(map[string]plan.Plan, len(plans))
	for _, p := range plans {
		byName[p.Slug] = p
	}
	return &PlanRepository{plans: byName}
}

var _ plan.Repository = (*PlanRepository)(nil)

func (r *PlanRepository) List(_ context.Context) ([]plan.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []plan.Plan
	for _, p := range r.plans {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriceIRR != out[j].PriceIRR {
			return out[i].PriceIRR < out[j].PriceIRR
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (r *PlanRepository) FindBySlug(_ context.Context, slug string) (*plan.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[slug]
	if !ok || !p.Active {
		return nil, plan.ErrPlanNotFound
	}
	cp := p
	return &cp, nil
}
