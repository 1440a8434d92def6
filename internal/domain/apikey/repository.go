package apikey

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrAPIKeyNotFound = errors.New("api key not found or revoked")

// Rotation replaces the stored credential of an existing key row.
type Rotation struct {
	KeyHash string
	Prefix  string
	Last4   string
}

type Repository interface {
	Create(ctx context.Context, key *APIKey) (uuid.UUID, error)
	// FindByPrefix returns only active keys; revoked and unknown prefixes
	// are indistinguishable to callers.
	FindByPrefix(ctx context.Context, prefix string) (*APIKey, error)
	FindByID(ctx context.Context, id uuid.UUID) (*APIKey, error)
	ListByOwner(ctx context.Context, ownerAccountID string) ([]*APIKey, error)
	// ListAll returns every key newest first, capped at limit.
	ListAll(ctx context.Context, limit int) ([]*APIKey, error)
	// Rotate swaps the credential in a single atomic update: there is no
	// moment where both the old and new secret validate, nor one where
	// neither does.
	Rotate(ctx context.Context, id uuid.UUID, rot Rotation) (*APIKey, error)
	// Revoke is idempotent.
	Revoke(ctx context.Context, id uuid.UUID) error
}
