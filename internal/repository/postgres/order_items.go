package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
)

const orderItemColumns = `id, order_id, listing_id, creator_id, external_line_item_id, external_product_id,
		external_variant_id, title, variant_title, quantity, unit_price_minor, line_total_minor, created_at`

type orderLineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderLineItemRepository creates a new order line item repository
func NewOrderLineItemRepository(db *sql.DB, logger *zap.Logger) *orderLineItemRepository {
	return &orderLineItemRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts all line items in one multi-row statement
func (r *orderLineItemRepository) CreateBatch(ctx context.Context, items []*domain.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	placeholders := make([]string, 0, len(items))
	args := make([]interface{}, 0, len(items)*13)

	for i, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}

		base := i * 13
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args,
			item.ID,
			item.OrderID,
			item.ListingID,
			item.CreatorID,
			item.ExternalLineItemID,
			item.ExternalProductID,
			item.ExternalVariantID,
			item.Title,
			item.VariantTitle,
			item.Quantity,
			item.UnitPriceMinor,
			item.LineTotalMinor,
			item.CreatedAt,
		)
	}

	query := `
		INSERT INTO order_line_items (id, order_id, listing_id, creator_id, external_line_item_id, external_product_id,
			external_variant_id, title, variant_title, quantity, unit_price_minor, line_total_minor, created_at)
		VALUES ` + strings.Join(placeholders, ", ")

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to create order line items", zap.Int("count", len(items)), zap.Error(err))
		return err
	}

	return nil
}

func (r *orderLineItemRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLineItem, error) {
	query := `
		SELECT ` + orderItemColumns + `
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	return r.queryItems(ctx, query, orderID)
}

func (r *orderLineItemRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]*domain.OrderLineItem, error) {
	query := `
		SELECT ` + orderItemColumns + `
		FROM order_line_items
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryItems(ctx, query, creatorID, limit, offset)
}

// SalesSummaryByCreator aggregates sold line items per currency, joined
// through orders for the currency code
func (r *orderLineItemRepository) SalesSummaryByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.SalesSummary, error) {
	query := `
		SELECT o.currency, COUNT(i.id), COALESCE(SUM(i.quantity), 0), COALESCE(SUM(i.line_total_minor), 0)
		FROM order_line_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.creator_id = $1
		GROUP BY o.currency
		ORDER BY o.currency
	`

	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		r.logger.Error("Failed to query sales summary", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.SalesSummary
	for rows.Next() {
		var summary domain.SalesSummary
		if err := rows.Scan(&summary.Currency, &summary.ItemsSold, &summary.UnitsSold, &summary.GrossMinor); err != nil {
			return nil, err
		}
		summaries = append(summaries, &summary)
	}

	return summaries, rows.Err()
}

func (r *orderLineItemRepository) queryItems(ctx context.Context, query string, args ...interface{}) ([]*domain.OrderLineItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list order line items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderLineItem
	for rows.Next() {
		var item domain.OrderLineItem
		var externalVariantID, variantTitle sql.NullString

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ListingID,
			&item.CreatorID,
			&item.ExternalLineItemID,
			&item.ExternalProductID,
			&externalVariantID,
			&item.Title,
			&variantTitle,
			&item.Quantity,
			&item.UnitPriceMinor,
			&item.LineTotalMinor,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if externalVariantID.Valid {
			item.ExternalVariantID = &externalVariantID.String
		}
		if variantTitle.Valid {
			item.VariantTitle = &variantTitle.String
		}

		items = append(items, &item)
	}

	return items, rows.Err()
}
