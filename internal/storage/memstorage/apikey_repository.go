package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
)

// APIKeyRepository keeps key rows under a single mutex so rotation and
// prefix lookups observe the same all-or-nothing swap the SQL store gives.
type APIKeyRepository struct {
	mu       sync.RWMutex
	keys     map[uuid.UUID]*apikey.APIKey
	byPrefix map[string]uuid.UUID
}

func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{
		keys:     make(map[uuid.UUID]*apikey.APIKey),
		byPrefix: make(map[string]uuid.UUID),
	}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

func (r *APIKeyRepository) Create(_ context.Context, key *apikey.APIKey) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *key
	cp.ID = uuid.New()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.keys[cp.ID] = &cp
	r.byPrefix[cp.Prefix] = cp.ID
	return cp.ID, nil
}

func (r *APIKeyRepository) FindByPrefix(_ context.Context, prefix string) (*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPrefix[prefix]
	if !ok {
		return nil, apikey.ErrAPIKeyNotFound
	}
	key := r.keys[id]
	if key == nil || key.Status != apikey.StatusActive || key.Prefix != prefix {
		return nil, apikey.ErrAPIKeyNotFound
	}
	cp := *key
	return &cp, nil
}

func (r *APIKeyRepository) FindByID(_ context.Context, id uuid.UUID) (*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[id]
	if !ok {
		return nil, apikey.ErrAPIKeyNotFound
	}
	cp := *key
	return &cp, nil
}

func (r *APIKeyRepository) ListByOwner(_ context.Context, ownerAccountID string) ([]*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*apikey.APIKey
	for _, key := range r.keys {
		if key.OwnerAccountID == ownerAccountID {
			cp := *key
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *APIKeyRepository) Rotate(_ context.Context, id uuid.UUID, rot apikey.Rotation) (*apikey.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keys[id]
	if !ok || key.Status != apikey.StatusActive {
		return nil, apikey.ErrAPIKeyNotFound
	}

	delete(r.byPrefix, key.Prefix)
	key.KeyHash = rot.KeyHash
	key.Prefix = rot.Prefix
	key.Last4 = rot.Last4
	r.byPrefix[rot.Prefix] = id

	cp := *key
	return &cp, nil
}

func (r *APIKeyRepository) Revoke(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keys[id]
	if !ok || key.Status == apikey.StatusRevoked {
		return nil
	}
	now := time.Now().UTC()
	key.Status = apikey.StatusRevoked
	key.RevokedAt = &now
	return nil
}

// ListAll returns every key newest first, capped at limit. Used by the
// admin listing.
func (r *APIKeyRepository) ListAll(_ context.Context, limit int) ([]*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*apikey.APIKey
	for _, key := range r.keys {
		cp := *key
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
