package postgres

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/pkg/errors"
)

func newListingRepoMock(t *testing.T) (*listingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewListingRepository(db, zap.NewNop()), mock
}

func listingRows(listing *domain.Listing) *sqlmock.Rows {
	var variantID, rejectionReason interface{}
	if listing.ExternalVariantID != nil {
		variantID = *listing.ExternalVariantID
	}
	if listing.RejectionReason != nil {
		rejectionReason = *listing.RejectionReason
	}
	var soldAt interface{}
	if listing.SoldAt != nil {
		soldAt = *listing.SoldAt
	}
	return sqlmock.NewRows([]string{
		"id", "creator_id", "title", "external_product_id", "external_variant_id",
		"price_minor", "currency", "status", "rejection_reason", "sold_at",
		"created_at", "updated_at",
	}).AddRow(
		listing.ID, listing.CreatorID, listing.Title, listing.ExternalProductID,
		variantID, listing.PriceMinor, listing.Currency, string(listing.Status),
		rejectionReason, soldAt, listing.CreatedAt, listing.UpdatedAt,
	)
}

func soldListing() *domain.Listing {
	now := time.Now()
	return &domain.Listing{
		ID:                uuid.New(),
		CreatorID:         uuid.New(),
		Title:             "Print",
		ExternalProductID: "9001",
		PriceMinor:        2999,
		Currency:          "USD",
		Status:            domain.ListingStatusSold,
		SoldAt:            &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestListingRepositoryMarkSold(t *testing.T) {
	t.Run("returns the updated row when the listing was live", func(t *testing.T) {
		repo, mock := newListingRepoMock(t)
		want := soldListing()

		mock.ExpectQuery("UPDATE listings").
			WillReturnRows(listingRows(want))

		got, err := repo.MarkSold(context.Background(), want.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, domain.ListingStatusSold, got.Status)
		require.NotNil(t, got.SoldAt)
	})

	t.Run("returns nil when the listing was not live", func(t *testing.T) {
		repo, mock := newListingRepoMock(t)

		mock.ExpectQuery("UPDATE listings").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		got, err := repo.MarkSold(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("surfaces database errors", func(t *testing.T) {
		repo, mock := newListingRepoMock(t)

		dbErr := stderrors.New("connection reset")
		mock.ExpectQuery("UPDATE listings").WillReturnError(dbErr)

		got, err := repo.MarkSold(context.Background(), uuid.New())
		assert.Nil(t, got)
		assert.Equal(t, dbErr, err)
	})
}

func TestListingRepositoryFindLive(t *testing.T) {
	t.Run("exact lookup filters on live status", func(t *testing.T) {
		repo, mock := newListingRepoMock(t)
		want := soldListing()
		want.Status = domain.ListingStatusLive
		want.SoldAt = nil

		mock.ExpectQuery("SELECT (.+) FROM listings").
			WithArgs("9001", domain.ListingStatusLive).
			WillReturnRows(listingRows(want))

		got, err := repo.FindLiveByExternalProductID(context.Background(), "9001")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
	})

	t.Run("exact lookup misses with ErrNotFound", func(t *testing.T) {
		repo, mock := newListingRepoMock(t)

		mock.ExpectQuery("SELECT (.+) FROM listings").
			WithArgs("9001", domain.ListingStatusLive).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindLiveByExternalProductID(context.Background(), "9001")
		require.Error(t, err)

		_, ok := err.(*errors.ErrNotFound)
		assert.True(t, ok, "expected *errors.ErrNotFound, got %T", err)
	})

	t.Run("suffix lookup binds the numeric suffix", func(t *testing.T) {
		repo, mock := newListingRepoMock(t)
		want := soldListing()
		want.Status = domain.ListingStatusLive
		want.SoldAt = nil
		want.ExternalProductID = "gid://shopify/Product/9001"

		mock.ExpectQuery("SELECT (.+) FROM listings").
			WithArgs("9001", domain.ListingStatusLive).
			WillReturnRows(listingRows(want))

		got, err := repo.FindLiveByExternalProductIDSuffix(context.Background(), "9001")
		require.NoError(t, err)
		assert.Equal(t, "gid://shopify/Product/9001", got.ExternalProductID)
	})
}
