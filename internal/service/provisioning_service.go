package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
	"github.com/arzfeed/pricegate-api/internal/domain/plan"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/util"
)

// MintedKey is the one response that ever carries a full secret.
type MintedKey struct {
	Key        *apikey.APIKey
	FullKey    string
	Plan       *plan.Plan
	APIBaseURL string
}

type PurchaseParams struct {
	// OwnerAccountID is set on the authenticated path (bearer subject).
	OwnerAccountID string
	Email          string
	PlanSlug       string
}

type ProvisioningService struct {
	catalog     *CatalogService
	keys        apikey.Repository
	pepper      string
	apiBaseURL  string
	demoEnabled bool
	logger      *zap.Logger
}

func NewProvisioningService(catalog *CatalogService, keys apikey.Repository, pepper, apiBaseURL string, demoEnabled bool, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{
		catalog:     catalog,
		keys:        keys,
		pepper:      pepper,
		apiBaseURL:  apiBaseURL,
		demoEnabled: demoEnabled,
		logger:      logger.Named("ProvisioningService"),
	}
}

// Purchase validates the plan and mints a key for the account. With no
// authenticated account it falls back to the demo path: flag-gated,
// email-keyed, and without any billing authority.
func (s *ProvisioningService) Purchase(ctx context.Context, params PurchaseParams) (*MintedKey, error) {
	p, err := s.catalog.FindPlan(ctx, params.PlanSlug)
	if err != nil {
		return nil, err
	}

	owner := params.OwnerAccountID
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if owner == "" {
		if !s.demoEnabled {
			return nil, fmt.Errorf("%w: unauthenticated purchase is disabled", ierr.ErrAccountRequired)
		}
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: a valid email is required", ierr.ErrAccountRequired)
		}
		owner = "demo:" + email
		s.logger.Info("Demo purchase", zap.String("email", email), zap.String("plan", p.Slug))
	}

	fullKey, prefix, last4, keyHash, err := util.GenerateAPIKey(s.pepper)
	if err != nil {
		s.logger.Error("Failed to generate api key", zap.Error(err))
		return nil, fmt.Errorf("%w: failed generating key", ierr.ErrInternalServer)
	}

	newKey := &apikey.APIKey{
		KeyHash:        keyHash,
		Prefix:         prefix,
		Last4:          last4,
		OwnerAccountID: owner,
		OwnerEmail:     email,
		PlanSlug:       p.Slug,
		Status:         apikey.StatusActive,
	}

	insertedID, err := s.keys.Create(ctx, newKey)
	if err != nil {
		s.logger.Error("Failed to persist new api key", zap.Error(err))
		return nil, fmt.Errorf("repository error creating api key: %w", err)
	}
	newKey.ID = insertedID

	s.logger.Info("API key minted",
		zap.String("key_id", insertedID.String()),
		zap.String("plan", p.Slug),
		zap.String("owner", owner),
	)

	return &MintedKey{
		Key:        newKey,
		FullKey:    fullKey,
		Plan:       p,
		APIBaseURL: s.apiBaseURL,
	}, nil
}
