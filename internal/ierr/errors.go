package ierr

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("invalid or missing credentials")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrInternalServer  = errors.New("internal server error")

	ErrUnknownPlan     = errors.New("unknown plan")
	ErrAccountRequired = errors.New("an account or email is required")

	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrQuotaExceeded = errors.New("monthly quota exceeded")

	ErrUpstreamUnavailable = errors.New("upstream price feed unavailable")
	ErrCatalogUnavailable  = errors.New("plan catalog unavailable")

	ErrInvalidToken = errors.New("invalid or expired token")
)
