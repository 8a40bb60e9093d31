package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/pkg/errors"
)

const listingColumns = `id, creator_id, title, external_product_id, external_variant_id,
		price_minor, currency, status, rejection_reason, sold_at, created_at, updated_at`

type listingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *sql.DB, logger *zap.Logger) *listingRepository {
	return &listingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO listings (id, creator_id, title, external_product_id, external_variant_id,
			price_minor, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if listing.Status == "" {
		listing.Status = domain.ListingStatusDraft
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	if listing.UpdatedAt.IsZero() {
		listing.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		listing.ID,
		listing.CreatorID,
		listing.Title,
		listing.ExternalProductID,
		listing.ExternalVariantID,
		listing.PriceMinor,
		listing.Currency,
		listing.Status,
		listing.CreatedAt,
		listing.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create listing", zap.Error(err))
		return err
	}

	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := r.scanListing(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "listing", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get listing by ID", zap.Error(err))
		return nil, err
	}

	return listing, nil
}

func (r *listingRepository) FindLiveByExternalProductID(ctx context.Context, externalProductID string) (*domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE external_product_id = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	listing, err := r.scanListing(r.db.QueryRowContext(ctx, query, externalProductID, domain.ListingStatusLive))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "listing", ID: externalProductID}
	}
	if err != nil {
		r.logger.Error("Failed to find listing by external product ID", zap.Error(err))
		return nil, err
	}

	return listing, nil
}

func (r *listingRepository) FindLiveByExternalProductIDSuffix(ctx context.Context, suffix string) (*domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE external_product_id LIKE '%' || $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	listing, err := r.scanListing(r.db.QueryRowContext(ctx, query, suffix, domain.ListingStatusLive))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "listing", ID: suffix}
	}
	if err != nil {
		r.logger.Error("Failed to find listing by external product ID suffix", zap.Error(err))
		return nil, err
	}

	return listing, nil
}

// MarkSold flips a live listing to sold in a single conditional update so
// concurrent duplicate deliveries cannot double-sell. Returns (nil, nil)
// when the listing was not in live state.
func (r *listingRepository) MarkSold(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `
		UPDATE listings
		SET status = $2, sold_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING ` + listingColumns

	now := time.Now()
	listing, err := r.scanListing(r.db.QueryRowContext(ctx, query,
		id, domain.ListingStatusSold, now, domain.ListingStatusLive))

	if err == sql.ErrNoRows {
		// Listing was not live; already sold or still in review
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to mark listing sold", zap.String("listing_id", id.String()), zap.Error(err))
		return nil, err
	}

	return listing, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, reason *string) error {
	query := `
		UPDATE listings
		SET status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, reason, time.Now())
	if err != nil {
		r.logger.Error("Failed to update listing status", zap.Error(err))
		return err
	}

	return nil
}

func (r *listingRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryListings(ctx, query, creatorID, limit, offset)
}

func (r *listingRepository) ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]*domain.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryListings(ctx, query, status, limit, offset)
}

func (r *listingRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]*domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list listings", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := r.scanListing(rows)
		if err != nil {
			r.logger.Error("Failed to scan listing row", zap.Error(err))
			return nil, err
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *listingRepository) scanListing(row rowScanner) (*domain.Listing, error) {
	var listing domain.Listing
	var externalVariantID, rejectionReason sql.NullString
	var soldAt sql.NullTime

	err := row.Scan(
		&listing.ID,
		&listing.CreatorID,
		&listing.Title,
		&listing.ExternalProductID,
		&externalVariantID,
		&listing.PriceMinor,
		&listing.Currency,
		&listing.Status,
		&rejectionReason,
		&soldAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalVariantID.Valid {
		listing.ExternalVariantID = &externalVariantID.String
	}
	if rejectionReason.Valid {
		listing.RejectionReason = &rejectionReason.String
	}
	if soldAt.Valid {
		listing.SoldAt = &soldAt.Time
	}

	return &listing, nil
}
