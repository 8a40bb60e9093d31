package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/internal/repository"
)

// SaleRecord is one sold line item with its order linkage, for the
// creator-facing sales report
type SaleRecord struct {
	Item  *domain.OrderLineItem
	Order *domain.Order
}

type salesService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewSalesService creates a new sales reporting service
func NewSalesService(repos *repository.Repositories, logger *zap.Logger) *salesService {
	return &salesService{
		repos:  repos,
		logger: logger,
	}
}

// ListSales returns a creator's sold line items joined with their
// orders, newest first
func (s *salesService) ListSales(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*SaleRecord, error) {
	items, err := s.repos.OrderLineItem.ListByCreator(ctx, creatorID, limit, offset)
	if err != nil {
		return nil, err
	}

	// Orders repeat across line items; fetch each once
	orders := make(map[uuid.UUID]*domain.Order)
	records := make([]*SaleRecord, 0, len(items))
	for _, item := range items {
		order, ok := orders[item.OrderID]
		if !ok {
			order, err = s.repos.Order.GetByID(ctx, item.OrderID)
			if err != nil {
				s.logger.Warn("Sales report missing order row",
					zap.String("order_id", item.OrderID.String()),
					zap.Error(err))
				continue
			}
			orders[item.OrderID] = order
		}
		records = append(records, &SaleRecord{Item: item, Order: order})
	}

	return records, nil
}

// PayoutSummary aggregates a creator's gross sales per currency in
// minor units
func (s *salesService) PayoutSummary(ctx context.Context, creatorID uuid.UUID) ([]*domain.SalesSummary, error) {
	return s.repos.OrderLineItem.SalesSummaryByCreator(ctx, creatorID)
}
