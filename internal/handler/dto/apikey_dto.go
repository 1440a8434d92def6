package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
)

type PurchaseRequest struct {
	PlanSlug string `json:"plan_slug" binding:"required"`
	// Email is only read on the unauthenticated demo path.
	Email string `json:"email" binding:"omitempty,email"`
}

// PurchaseResponse is the only place a full secret ever appears; it is not
// replayable from any listing endpoint.
type PurchaseResponse struct {
	APIKey    string    `json:"api_key"`
	APIKeyID  uuid.UUID `json:"api_key_id"`
	Masked    string    `json:"masked"`
	APIURL    string    `json:"api_url"`
	Plan      PlanRef   `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

type APIKeyResponse struct {
	ID        uuid.UUID  `json:"id"`
	Masked    string     `json:"masked"`
	PlanSlug  string     `json:"plan_slug"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

type ListKeysResponse struct {
	Keys []APIKeyResponse `json:"keys"`
}

type RotateResponse struct {
	APIKey    string    `json:"api_key"`
	APIKeyID  uuid.UUID `json:"api_key_id"`
	Masked    string    `json:"masked"`
	CreatedAt time.Time `json:"created_at"`
}

type AddRequestsRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type AdminKeyResponse struct {
	ID        uuid.UUID  `json:"api_key_id"`
	Masked    string     `json:"masked"`
	Status    string     `json:"status"`
	Email     string     `json:"email,omitempty"`
	PlanSlug  string     `json:"plan_slug"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

type AdminListKeysResponse struct {
	Keys []AdminKeyResponse `json:"keys"`
}

func NewAPIKeyResponse(k *apikey.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:        k.ID,
		Masked:    k.Masked(),
		PlanSlug:  k.PlanSlug,
		Status:    string(k.Status),
		CreatedAt: k.CreatedAt,
		RevokedAt: k.RevokedAt,
	}
}
