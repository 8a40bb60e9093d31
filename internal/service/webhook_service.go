package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/internal/repository"
	"github.com/craftlane/storefront/internal/webhook"
	"github.com/craftlane/storefront/pkg/errors"
)

// Outcome reports order-webhook processing. Success means the order
// record is durable; listing counts record partial failures for
// operational follow-up without failing the delivery.
type Outcome struct {
	Success          bool
	OrderID          string
	AlreadyProcessed bool
	ListingsSold     int
	ListingsSkipped  int
	ListingsFailed   int
	Err              error
}

type webhookService struct {
	repos   *repository.Repositories
	matcher *webhook.Matcher
	logger  *zap.Logger
}

// NewWebhookService creates the order-webhook processing service
func NewWebhookService(repos *repository.Repositories, logger *zap.Logger) *webhookService {
	return &webhookService{
		repos:   repos,
		matcher: webhook.NewMatcher(repos.Listing, logger),
		logger:  logger,
	}
}

// ProcessOrder applies a normalized order: idempotent order insert,
// batch line-item insert, then one conditional sale per matched
// listing. There is deliberately no transaction spanning the writes;
// each step is individually idempotent and the order row is the
// durable source of truth.
func (s *webhookService) ProcessOrder(ctx context.Context, norm *webhook.NormalizedOrder) Outcome {
	// Fast path for redelivery. The unique constraint below is the
	// correctness guarantee; this lookup is an optimization.
	if existing, err := s.repos.Order.GetByExternalOrderID(ctx, norm.ExternalOrderID); err == nil && existing != nil {
		s.logger.Info("Order already processed",
			zap.String("external_order_id", norm.ExternalOrderID))
		return Outcome{Success: true, OrderID: norm.ExternalOrderID, AlreadyProcessed: true}
	}

	matches := s.matcher.Match(ctx, norm.ExternalOrderID, norm.LineItems)

	order := &domain.Order{
		ExternalOrderID:   norm.ExternalOrderID,
		OrderNumber:       norm.OrderNumber,
		DisplayName:       norm.DisplayName,
		CustomerEmail:     norm.CustomerEmail,
		CustomerName:      norm.CustomerName,
		SubtotalMinor:     norm.SubtotalMinor,
		TaxMinor:          norm.TaxMinor,
		ShippingMinor:     norm.ShippingMinor,
		TotalMinor:        norm.TotalMinor,
		Currency:          norm.Currency,
		FinancialStatus:   norm.FinancialStatus,
		FulfillmentStatus: norm.FulfillmentStatus,
		RawPayload:        norm.Raw,
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		if _, ok := err.(*errors.ErrDuplicate); ok {
			// Benign race: a concurrent delivery inserted first
			s.logger.Info("Order inserted by concurrent delivery",
				zap.String("external_order_id", norm.ExternalOrderID))
			return Outcome{Success: true, OrderID: norm.ExternalOrderID, AlreadyProcessed: true}
		}
		s.logger.Error("Failed to persist order",
			zap.String("external_order_id", norm.ExternalOrderID),
			zap.Error(err))
		return Outcome{OrderID: norm.ExternalOrderID, Err: err}
	}

	// From here on the delivery is a success; remaining failures are
	// logged for manual reconciliation, never propagated.
	if len(matches) > 0 {
		items := make([]*domain.OrderLineItem, 0, len(matches))
		for _, match := range matches {
			items = append(items, &domain.OrderLineItem{
				OrderID:            order.ID,
				ListingID:          match.Listing.ID,
				CreatorID:          match.CreatorID,
				ExternalLineItemID: match.Item.ExternalLineItemID,
				ExternalProductID:  match.Item.ExternalProductID,
				ExternalVariantID:  match.Item.ExternalVariantID,
				Title:              match.Item.Title,
				VariantTitle:       match.Item.VariantTitle,
				Quantity:           match.Quantity,
				UnitPriceMinor:     match.UnitPriceMinor,
				LineTotalMinor:     match.UnitPriceMinor * int64(match.Quantity),
			})
		}

		if err := s.repos.OrderLineItem.CreateBatch(ctx, items); err != nil {
			s.logger.Error("Failed to persist order line items",
				zap.String("external_order_id", norm.ExternalOrderID),
				zap.Int("count", len(items)),
				zap.Error(err))
		}
	}

	outcome := Outcome{Success: true, OrderID: norm.ExternalOrderID}

	for _, match := range matches {
		listing, err := s.repos.Listing.MarkSold(ctx, match.Listing.ID)
		if err != nil {
			outcome.ListingsFailed++
			s.logger.Error("Failed to mark listing sold",
				zap.String("listing_id", match.Listing.ID.String()),
				zap.String("external_order_id", norm.ExternalOrderID),
				zap.Error(err))
			continue
		}
		if listing == nil {
			// Not live anymore, typically already sold by a
			// concurrent delivery
			outcome.ListingsSkipped++
			s.logger.Info("Listing not in live state, skipping",
				zap.String("listing_id", match.Listing.ID.String()),
				zap.String("external_order_id", norm.ExternalOrderID))
			continue
		}

		outcome.ListingsSold++
		s.logSaleActivity(ctx, listing, match, order)
	}

	s.logger.Info("Order processed",
		zap.String("external_order_id", norm.ExternalOrderID),
		zap.Int("matched", len(matches)),
		zap.Int("sold", outcome.ListingsSold),
		zap.Int("skipped", outcome.ListingsSkipped),
		zap.Int("failed", outcome.ListingsFailed))

	return outcome
}

// logSaleActivity appends a feed entry for a completed sale.
// Best-effort: failure is logged and never affects the outcome.
func (s *webhookService) logSaleActivity(ctx context.Context, listing *domain.Listing, match webhook.LineMatch, order *domain.Order) {
	var description string
	if match.Quantity == 1 {
		description = fmt.Sprintf("Sold 1 unit of %q", listing.Title)
	} else {
		description = fmt.Sprintf("Sold %d units of %q", match.Quantity, listing.Title)
	}

	entry := &domain.ActivityLogEntry{
		CreatorID:    listing.CreatorID,
		ActivityType: "listing_sold",
		EntityType:   "listing",
		EntityID:     listing.ID,
		Description:  description,
		Metadata: map[string]interface{}{
			"listing_id":        listing.ID.String(),
			"order_id":          order.ID.String(),
			"external_order_id": order.ExternalOrderID,
			"quantity":          match.Quantity,
			"unit_price_minor":  match.UnitPriceMinor,
			"line_total_minor":  match.UnitPriceMinor * int64(match.Quantity),
			"currency":          order.Currency,
		},
	}

	if err := s.repos.Activity.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to append sale activity",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
	}
}
