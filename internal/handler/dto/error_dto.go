package dto

type APIErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ThrottleResponse is the 429 body. Reason tells the client which limiter
// tripped: "rate_limited" clears on its own, "quota_exceeded" needs a
// top-up or the month rollover.
type ThrottleResponse struct {
	Code              string         `json:"code"`
	Message           string         `json:"message"`
	Reason            string         `json:"reason"`
	RetryAfterSeconds int            `json:"retry_after_seconds,omitempty"`
	Usage             *UsageResponse `json:"usage,omitempty"`
}

const (
	ThrottleReasonRateLimited   = "rate_limited"
	ThrottleReasonQuotaExceeded = "quota_exceeded"
)
