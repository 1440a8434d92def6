package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
)

type APIKeyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAPIKeyRepository(db *pgxpool.Pool, logger *zap.Logger) *APIKeyRepository {
	return &APIKeyRepository{
		db:     db,
		logger: logger.Named("APIKeyRepository"),
	}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

const keyColumns = `id, key_hash, prefix, last4, owner_account_id, owner_email, plan_slug, status, created_at, revoked_at`

func scanKey(row pgx.Row) (*apikey.APIKey, error) {
	var key apikey.APIKey
	err := row.Scan(
		&key.ID,
		&key.KeyHash,
		&key.Prefix,
		&key.Last4,
		&key.OwnerAccountID,
		&key.OwnerEmail,
		&key.PlanSlug,
		&key.Status,
		&key.CreatedAt,
		&key.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey) (uuid.UUID, error) {
	query := `
		INSERT INTO api_keys (key_hash, prefix, last4, owner_account_id, owner_email, plan_slug, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var insertedID uuid.UUID
	err := r.db.QueryRow(ctx, query,
		key.KeyHash,
		key.Prefix,
		key.Last4,
		key.OwnerAccountID,
		key.OwnerEmail,
		key.PlanSlug,
		key.Status,
	).Scan(&insertedID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Failed to create API key due to unique constraint violation",
				zap.String("constraint", pgErr.ConstraintName),
				zap.String("prefix", key.Prefix),
			)
			return uuid.Nil, fmt.Errorf("api key constraint violation (%s)", pgErr.ConstraintName)
		}
		r.logger.Error("Failed to create api key in database", zap.Error(err))
		return uuid.Nil, fmt.Errorf("db error creating api key: %w", err)
	}

	r.logger.Info("API key created", zap.String("id", insertedID.String()), zap.String("prefix", key.Prefix))
	return insertedID, nil
}

func (r *APIKeyRepository) FindByPrefix(ctx context.Context, prefix string) (*apikey.APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE prefix = $1 AND status = 'active'`

	key, err := scanKey(r.db.QueryRow(ctx, query, prefix))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("API key not found or revoked by prefix", zap.String("prefix", prefix))
			return nil, apikey.ErrAPIKeyNotFound
		}
		r.logger.Error("Failed to find api key by prefix", zap.String("prefix", prefix), zap.Error(err))
		return nil, fmt.Errorf("db error finding api key: %w", err)
	}

	return key, nil
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*apikey.APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE id = $1`

	key, err := scanKey(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apikey.ErrAPIKeyNotFound
		}
		r.logger.Error("Failed to find api key by id", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("db error finding api key: %w", err)
	}

	return key, nil
}

func (r *APIKeyRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*apikey.APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE owner_account_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerAccountID)
	if err != nil {
		r.logger.Error("Failed to list api keys by owner", zap.Error(err))
		return nil, fmt.Errorf("db error listing api keys: %w", err)
	}
	defer rows.Close()

	var keys []*apikey.APIKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("db error scanning api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating api keys: %w", err)
	}

	return keys, nil
}

func (r *APIKeyRepository) ListAll(ctx context.Context, limit int) ([]*apikey.APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list all api keys", zap.Error(err))
		return nil, fmt.Errorf("db error listing api keys: %w", err)
	}
	defer rows.Close()

	var keys []*apikey.APIKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("db error scanning api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating api keys: %w", err)
	}

	return keys, nil
}

// Rotate swaps the credential in one UPDATE. A concurrent FindByPrefix sees
// either the old row or the new one, never a half-written state.
func (r *APIKeyRepository) Rotate(ctx context.Context, id uuid.UUID, rot apikey.Rotation) (*apikey.APIKey, error) {
	query := `
		UPDATE api_keys
		SET key_hash = $1, prefix = $2, last4 = $3
		WHERE id = $4 AND status = 'active'
		RETURNING ` + keyColumns

	key, err := scanKey(r.db.QueryRow(ctx, query, rot.KeyHash, rot.Prefix, rot.Last4, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Rotation target not found or revoked", zap.String("id", id.String()))
			return nil, apikey.ErrAPIKeyNotFound
		}
		r.logger.Error("Failed to rotate api key", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("db error rotating api key: %w", err)
	}

	r.logger.Info("API key rotated", zap.String("id", id.String()), zap.String("prefix", rot.Prefix))
	return key, nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE api_keys
		SET status = 'revoked', revoked_at = now()
		WHERE id = $1 AND status = 'active'
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to revoke api key", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("db error revoking api key: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Already revoked or never existed; revocation is idempotent.
		r.logger.Debug("Revoke affected no rows", zap.String("id", id.String()))
	}
	return nil
}
