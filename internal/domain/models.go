package domain

import (
	"time"

	"github.com/google/uuid"
)

// Creator represents a seller onboarded to the marketplace
type Creator struct {
	ID           uuid.UUID
	Name         string
	Email        string
	APIKeyHash   string
	SocialHandle *string
	Verified     bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Listing represents one sellable item offered by a creator.
// ExternalProductID is the commerce platform's product reference; its
// format has varied historically (bare numeric id or a GID embedding it).
type Listing struct {
	ID                uuid.UUID
	CreatorID         uuid.UUID
	Title             string
	ExternalProductID string
	ExternalVariantID *string
	PriceMinor        int64
	Currency          string
	Status            ListingStatus
	RejectionReason   *string
	SoldAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Order is the internal record of an order received from the commerce
// platform. The unique constraint on ExternalOrderID is the idempotency
// anchor for webhook redelivery.
type Order struct {
	ID                uuid.UUID
	ExternalOrderID   string
	OrderNumber       *string
	DisplayName       *string
	CustomerEmail     *string
	CustomerName      *string
	SubtotalMinor     int64
	TaxMinor          int64
	ShippingMinor     int64
	TotalMinor        int64
	Currency          string
	FinancialStatus   *string
	FulfillmentStatus *string
	RawPayload        []byte // JSONB, retained for audit
	CreatedAt         time.Time
}

// OrderLineItem links an order to a sold listing. CreatorID is
// denormalized from the listing for fast creator-scoped sales queries;
// titles are snapshots taken at time of sale.
type OrderLineItem struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	ListingID          uuid.UUID
	CreatorID          uuid.UUID
	ExternalLineItemID string
	ExternalProductID  string
	ExternalVariantID  *string
	Title              string
	VariantTitle       *string
	Quantity           int
	UnitPriceMinor     int64
	LineTotalMinor     int64
	CreatedAt          time.Time
}

// ActivityLogEntry is an append-only record for the creator-facing
// activity feed
type ActivityLogEntry struct {
	ID           uuid.UUID
	CreatorID    uuid.UUID
	ActivityType string
	EntityType   string
	EntityID     uuid.UUID
	Description  string
	Metadata     map[string]interface{} // JSONB
	CreatedAt    time.Time
}

// SalesSummary aggregates a creator's sold line items per currency
type SalesSummary struct {
	Currency   string
	ItemsSold  int
	UnitsSold  int
	GrossMinor int64
}
