package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftlane/storefront/internal/domain"
)

// Repositories bundles all persistence interfaces for injection
type Repositories struct {
	Creator       CreatorRepository
	Listing       ListingRepository
	Order         OrderRepository
	OrderLineItem OrderLineItemRepository
	Activity      ActivityRepository
}

type CreatorRepository interface {
	Create(ctx context.Context, creator *domain.Creator) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Creator, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Creator, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	// FindLiveByExternalProductID matches the stored external product
	// reference exactly. Only live listings are considered.
	FindLiveByExternalProductID(ctx context.Context, externalProductID string) (*domain.Listing, error)
	// FindLiveByExternalProductIDSuffix matches any stored reference
	// ending with the given numeric suffix, tolerating historical
	// identifier formats.
	FindLiveByExternalProductIDSuffix(ctx context.Context, suffix string) (*domain.Listing, error)
	// MarkSold performs the conditional sale transition:
	// status=sold, sold_at=now where id=$1 and status=live.
	// Returns (nil, nil) when no row matched, i.e. the listing was not
	// live, typically already sold by a concurrent delivery.
	MarkSold(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, reason *string) error
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*domain.Listing, error)
	ListByStatus(ctx context.Context, status domain.ListingStatus, limit, offset int) ([]*domain.Listing, error)
}

type OrderRepository interface {
	// Create inserts the order. A unique-constraint violation on
	// external_order_id is returned as *errors.ErrDuplicate.
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.Order, error)
}

type OrderLineItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.OrderLineItem) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLineItem, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*domain.OrderLineItem, error)
	SalesSummaryByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.SalesSummary, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*domain.ActivityLogEntry, error)
}
