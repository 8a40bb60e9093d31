package webhook

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/pkg/errors"
)

type fakeFinder struct {
	listings []*domain.Listing
}

func (f *fakeFinder) FindLiveByExternalProductID(_ context.Context, externalProductID string) (*domain.Listing, error) {
	for _, l := range f.listings {
		if l.Status == domain.ListingStatusLive && l.ExternalProductID == externalProductID {
			return l, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "listing", ID: externalProductID}
}

func (f *fakeFinder) FindLiveByExternalProductIDSuffix(_ context.Context, suffix string) (*domain.Listing, error) {
	for _, l := range f.listings {
		if l.Status == domain.ListingStatusLive && strings.HasSuffix(l.ExternalProductID, suffix) {
			return l, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "listing", ID: suffix}
}

func liveListing(externalProductID string) *domain.Listing {
	return &domain.Listing{
		ID:                uuid.New(),
		CreatorID:         uuid.New(),
		Title:             "Listing " + externalProductID,
		ExternalProductID: externalProductID,
		Status:            domain.ListingStatusLive,
	}
}

func validItem(productRef string) NormalizedLineItem {
	return NormalizedLineItem{
		ExternalLineItemID: "1",
		ExternalProductID:  productRef,
		Quantity:           1,
		UnitPriceMinor:     2999,
		Valid:              true,
	}
}

func TestNumericProductID(t *testing.T) {
	assert.Equal(t, "123456", NumericProductID("123456"))
	assert.Equal(t, "123456", NumericProductID("gid://shopify/Product/123456"))
	assert.Equal(t, "123456", NumericProductID(" 123456 "))
	assert.Equal(t, "", NumericProductID(""))
	assert.Equal(t, "", NumericProductID("not-a-product"))
	assert.Equal(t, "", NumericProductID("gid://shopify/Product/abc"))
}

func TestMatcher(t *testing.T) {
	logger := zap.NewNop()

	t.Run("matches a bare numeric id exactly", func(t *testing.T) {
		listing := liveListing("123456")
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{listing}}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{validItem("123456")})
		require.Len(t, matches, 1)
		assert.Equal(t, listing.ID, matches[0].Listing.ID)
		assert.Equal(t, listing.CreatorID, matches[0].CreatorID)
	})

	t.Run("matches a stored structured identifier from a bare id", func(t *testing.T) {
		listing := liveListing("gid://shopify/Product/123456")
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{listing}}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{validItem("123456")})
		require.Len(t, matches, 1)
		assert.Equal(t, listing.ID, matches[0].Listing.ID)
	})

	t.Run("matches a bare stored id from a structured reference", func(t *testing.T) {
		listing := liveListing("123456")
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{listing}}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{validItem("gid://shopify/Product/123456")})
		require.Len(t, matches, 1)
		assert.Equal(t, listing.ID, matches[0].Listing.ID)
	})

	t.Run("falls back to suffix matching for other stored variants", func(t *testing.T) {
		listing := liveListing("legacy/Product/123456")
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{listing}}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{validItem("123456")})
		require.Len(t, matches, 1)
		assert.Equal(t, listing.ID, matches[0].Listing.ID)
	})

	t.Run("exact match wins over suffix match", func(t *testing.T) {
		exact := liveListing("123456")
		bySuffix := liveListing("legacy/Product/123456")
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{bySuffix, exact}}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{validItem("123456")})
		require.Len(t, matches, 1)
		assert.Equal(t, exact.ID, matches[0].Listing.ID)
	})

	t.Run("non-live listings never match", func(t *testing.T) {
		listing := liveListing("123456")
		listing.Status = domain.ListingStatusDraft
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{listing}}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{validItem("123456")})
		assert.Empty(t, matches)
	})

	t.Run("a miss does not abort the other line items", func(t *testing.T) {
		listing := liveListing("9001")
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{listing}}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{
			validItem("404404"),
			validItem("9001"),
		})
		require.Len(t, matches, 1)
		assert.Equal(t, listing.ID, matches[0].Listing.ID)
	})

	t.Run("skips invalid items", func(t *testing.T) {
		listing := liveListing("9001")
		m := NewMatcher(&fakeFinder{listings: []*domain.Listing{listing}}, logger)

		item := validItem("9001")
		item.Valid = false

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{item})
		assert.Empty(t, matches)
	})

	t.Run("skips items with no resolvable product reference", func(t *testing.T) {
		m := NewMatcher(&fakeFinder{}, logger)

		matches := m.Match(context.Background(), "5001", []NormalizedLineItem{validItem("shipping-line")})
		assert.Empty(t, matches)
	})
}
