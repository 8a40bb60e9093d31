package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/pkg/errors"
)

type creatorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *sql.DB, logger *zap.Logger) *creatorRepository {
	return &creatorRepository{
		db:     db,
		logger: logger,
	}
}

func (r *creatorRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Creator, error) {
	// Since bcrypt hashes are salted and different each time, we can't do a direct lookup.
	// We need to iterate through active creators and verify the API key against each hash.
	// For production, consider adding a lookup_hash column (SHA256) for efficient lookup.

	query := `
		SELECT id, name, email, api_key_hash, social_handle, verified, is_active, created_at, updated_at
		FROM creators
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query creators", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var creator domain.Creator
		var socialHandle sql.NullString

		err := rows.Scan(
			&creator.ID,
			&creator.Name,
			&creator.Email,
			&creator.APIKeyHash,
			&socialHandle,
			&creator.Verified,
			&creator.IsActive,
			&creator.CreatedAt,
			&creator.UpdatedAt,
		)

		if err != nil {
			continue
		}

		// Verify API key against stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(creator.APIKeyHash), []byte(apiKey)); err == nil {
			// Match found
			if socialHandle.Valid {
				creator.SocialHandle = &socialHandle.String
			}
			return &creator, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *creatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Creator, error) {
	query := `
		SELECT id, name, email, api_key_hash, social_handle, verified, is_active, created_at, updated_at
		FROM creators
		WHERE id = $1
	`

	var creator domain.Creator
	var socialHandle sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&creator.ID,
		&creator.Name,
		&creator.Email,
		&creator.APIKeyHash,
		&socialHandle,
		&creator.Verified,
		&creator.IsActive,
		&creator.CreatedAt,
		&creator.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "creator", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get creator by ID", zap.Error(err))
		return nil, err
	}

	if socialHandle.Valid {
		creator.SocialHandle = &socialHandle.String
	}

	return &creator, nil
}

func (r *creatorRepository) Create(ctx context.Context, creator *domain.Creator) error {
	query := `
		INSERT INTO creators (id, name, email, api_key_hash, social_handle, verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	if creator.ID == uuid.Nil {
		creator.ID = uuid.New()
	}
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = now
	}
	if creator.UpdatedAt.IsZero() {
		creator.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		creator.ID,
		creator.Name,
		creator.Email,
		creator.APIKeyHash,
		creator.SocialHandle,
		creator.Verified,
		creator.IsActive,
		creator.CreatedAt,
		creator.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create creator", zap.Error(err))
		return err
	}

	return nil
}

func (r *creatorRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	query := `
		UPDATE creators
		SET verified = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, verified, time.Now())
	if err != nil {
		r.logger.Error("Failed to update creator verification", zap.Error(err))
		return err
	}

	return nil
}
