package apikey

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

type APIKey struct {
	ID             uuid.UUID  `db:"id"`
	KeyHash        string     `db:"key_hash"`
	Prefix         string     `db:"prefix"`
	Last4          string     `db:"last4"`
	OwnerAccountID string     `db:"owner_account_id"`
	OwnerEmail     string     `db:"owner_email"`
	PlanSlug       string     `db:"plan_slug"`
	Status         Status     `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	RevokedAt      *time.Time `db:"revoked_at"`
}

// Masked is the only rendering of a key ever returned after mint time.
// The full secret cannot be recovered from it.
func (k *APIKey) Masked() string {
	return fmt.Sprintf("%s_%s…%s", KeyFormatTag, k.Prefix, k.Last4)
}

const (
	KeyFormatTag    = "pg"
	KeyPrefixLength = 8
	KeySecretLength = 32
	KeyFormat       = "pg_%s_%s"
)
