package plan

import (
	"context"
	"errors"
)

var ErrPlanNotFound = errors.New("plan not found or inactive")

type Repository interface {
	// List returns active plans ordered by ascending price.
	List(ctx context.Context) ([]Plan, error)
	FindBySlug(ctx context.Context, slug string) (*Plan, error)
}
