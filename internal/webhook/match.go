package webhook

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/pkg/errors"
)

const productGIDPrefix = "gid://shopify/Product/"

// LineMatch pairs a sanitized line item with the live listing it
// resolved to
type LineMatch struct {
	Listing        *domain.Listing
	CreatorID      uuid.UUID
	Quantity       int
	UnitPriceMinor int64
	Item           NormalizedLineItem
}

// ListingFinder is the subset of the listing repository the matcher
// needs
type ListingFinder interface {
	FindLiveByExternalProductID(ctx context.Context, externalProductID string) (*domain.Listing, error)
	FindLiveByExternalProductIDSuffix(ctx context.Context, suffix string) (*domain.Listing, error)
}

// matchStrategy resolves a bare numeric product id against one stored
// encoding of the external product reference
type matchStrategy struct {
	name string
	find func(ctx context.Context, finder ListingFinder, numericID string) (*domain.Listing, error)
}

// matchStrategies are tried in priority order; the first hit wins.
// The platform's identifier format has varied historically, so new
// encodings are appended here rather than branched inline.
var matchStrategies = []matchStrategy{
	{
		name: "exact",
		find: func(ctx context.Context, finder ListingFinder, numericID string) (*domain.Listing, error) {
			return finder.FindLiveByExternalProductID(ctx, numericID)
		},
	},
	{
		name: "gid",
		find: func(ctx context.Context, finder ListingFinder, numericID string) (*domain.Listing, error) {
			return finder.FindLiveByExternalProductID(ctx, productGIDPrefix+numericID)
		},
	},
	{
		name: "suffix",
		find: func(ctx context.Context, finder ListingFinder, numericID string) (*domain.Listing, error) {
			return finder.FindLiveByExternalProductIDSuffix(ctx, numericID)
		},
	},
}

// NumericProductID extracts the bare numeric id from an external
// product reference, which may be the id itself or a GID embedding it
// (e.g. "gid://shopify/Product/9001"). Returns "" when no numeric id
// can be extracted.
func NumericProductID(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if isDigits(ref) {
		return ref
	}
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		if tail := ref[idx+1:]; isDigits(tail) {
			return tail
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Matcher resolves line items to live listings
type Matcher struct {
	listings ListingFinder
	logger   *zap.Logger
}

// NewMatcher creates a matcher over the given listing finder
func NewMatcher(listings ListingFinder, logger *zap.Logger) *Matcher {
	return &Matcher{
		listings: listings,
		logger:   logger,
	}
}

// Match resolves each line item independently. Misses and invalid items
// are logged and skipped; they never abort processing of the others.
func (m *Matcher) Match(ctx context.Context, externalOrderID string, items []NormalizedLineItem) []LineMatch {
	matches := make([]LineMatch, 0, len(items))

	for _, item := range items {
		if !item.Valid {
			m.logger.Warn("Skipping line item with unparsable price or quantity",
				zap.String("external_order_id", externalOrderID),
				zap.String("external_line_item_id", item.ExternalLineItemID))
			continue
		}

		numericID := NumericProductID(item.ExternalProductID)
		if numericID == "" {
			m.logger.Info("Line item has no resolvable product reference",
				zap.String("external_order_id", externalOrderID),
				zap.String("external_product_id", item.ExternalProductID))
			continue
		}

		listing := m.resolve(ctx, numericID)
		if listing == nil {
			// Legitimate for shipping lines or products not tracked
			// as listings
			m.logger.Info("No live listing matched line item",
				zap.String("external_order_id", externalOrderID),
				zap.String("external_product_id", item.ExternalProductID))
			continue
		}

		matches = append(matches, LineMatch{
			Listing:        listing,
			CreatorID:      listing.CreatorID,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
			Item:           item,
		})
	}

	return matches
}

func (m *Matcher) resolve(ctx context.Context, numericID string) *domain.Listing {
	for _, strategy := range matchStrategies {
		listing, err := strategy.find(ctx, m.listings, numericID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				continue
			}
			m.logger.Error("Listing lookup failed",
				zap.String("strategy", strategy.name),
				zap.String("product_id", numericID),
				zap.Error(err))
			continue
		}
		if listing != nil {
			return listing
		}
	}
	return nil
}
