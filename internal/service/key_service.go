package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/util"
)

// KeyService owns everything about issued keys except quota accounting:
// authentication by secret, masked listing, rotation and revocation.
type KeyService struct {
	repo   apikey.Repository
	pepper string
	logger *zap.Logger
}

func NewKeyService(repo apikey.Repository, pepper string, logger *zap.Logger) *KeyService {
	return &KeyService{
		repo:   repo,
		pepper: pepper,
		logger: logger.Named("KeyService"),
	}
}

// Authenticate resolves a presented secret to its key row. Malformed,
// unknown and revoked keys all produce the same ErrUnauthenticated so the
// response cannot be used to enumerate keys.
func (s *KeyService) Authenticate(ctx context.Context, presented string) (*apikey.APIKey, error) {
	prefix, ok := util.SplitAPIKey(presented)
	if !ok {
		return nil, ierr.ErrUnauthenticated
	}

	key, err := s.repo.FindByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, apikey.ErrAPIKeyNotFound) {
			return nil, ierr.ErrUnauthenticated
		}
		s.logger.Error("Failed to query api key repository", zap.String("prefix", prefix), zap.Error(err))
		return nil, fmt.Errorf("%w: key lookup failed", ierr.ErrInternalServer)
	}

	presentedHash := util.HashAPIKey(s.pepper, presented)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(key.KeyHash)) != 1 {
		s.logger.Warn("API key hash mismatch", zap.String("prefix", prefix), zap.String("key_id", key.ID.String()))
		return nil, ierr.ErrUnauthenticated
	}

	return key, nil
}

// ListForOwner returns the owner's keys; callers only ever see the masked
// rendering, never a secret.
func (s *KeyService) ListForOwner(ctx context.Context, ownerAccountID string) ([]*apikey.APIKey, error) {
	keys, err := s.repo.ListByOwner(ctx, ownerAccountID)
	if err != nil {
		s.logger.Error("Failed to list api keys for owner", zap.Error(err))
		return nil, fmt.Errorf("repository error listing api keys: %w", err)
	}
	return keys, nil
}

// Rotate mints a fresh secret onto the key row. The swap is a single
// repository update: the old secret stops validating at the same instant
// the new one starts.
func (s *KeyService) Rotate(ctx context.Context, id uuid.UUID, ownerAccountID string) (*apikey.APIKey, string, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apikey.ErrAPIKeyNotFound) {
			return nil, "", fmt.Errorf("%w: api key not found", ierr.ErrNotFound)
		}
		return nil, "", fmt.Errorf("repository error loading api key: %w", err)
	}
	if existing.OwnerAccountID != ownerAccountID {
		s.logger.Warn("Rotation denied for non-owner",
			zap.String("key_id", id.String()),
			zap.String("caller", ownerAccountID),
		)
		return nil, "", fmt.Errorf("%w: key belongs to another account", ierr.ErrForbidden)
	}

	fullKey, prefix, last4, keyHash, err := util.GenerateAPIKey(s.pepper)
	if err != nil {
		s.logger.Error("Failed to generate rotation secret", zap.Error(err))
		return nil, "", fmt.Errorf("%w: failed generating key", ierr.ErrInternalServer)
	}

	rotated, err := s.repo.Rotate(ctx, id, apikey.Rotation{KeyHash: keyHash, Prefix: prefix, Last4: last4})
	if err != nil {
		if errors.Is(err, apikey.ErrAPIKeyNotFound) {
			// Revoked between the ownership check and the swap.
			return nil, "", ierr.ErrUnauthenticated
		}
		return nil, "", fmt.Errorf("repository error rotating api key: %w", err)
	}

	s.logger.Info("API key rotated", zap.String("key_id", id.String()))
	return rotated, fullKey, nil
}

// Revoke is idempotent; a revoked key fails authentication immediately and
// permanently.
func (s *KeyService) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Revoke(ctx, id); err != nil {
		s.logger.Error("Failed to revoke api key", zap.String("key_id", id.String()), zap.Error(err))
		return fmt.Errorf("repository error revoking api key: %w", err)
	}
	s.logger.Info("API key revoked", zap.String("key_id", id.String()))
	return nil
}

// FindByID exposes a key row for owner checks by other services.
func (s *KeyService) FindByID(ctx context.Context, id uuid.UUID) (*apikey.APIKey, error) {
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apikey.ErrAPIKeyNotFound) {
			return nil, fmt.Errorf("%w: api key not found", ierr.ErrNotFound)
		}
		return nil, fmt.Errorf("repository error loading api key: %w", err)
	}
	return key, nil
}

// ListAll backs the admin listing.
func (s *KeyService) ListAll(ctx context.Context, limit int) ([]*apikey.APIKey, error) {
	keys, err := s.repo.ListAll(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list all api keys", zap.Error(err))
		return nil, fmt.Errorf("repository error listing api keys: %w", err)
	}
	return keys, nil
}
