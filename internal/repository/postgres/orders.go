package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/pkg/errors"
)

const orderColumns = `id, external_order_id, order_number, display_name, customer_email, customer_name,
		subtotal_minor, tax_minor, shipping_minor, total_minor, currency,
		financial_status, fulfillment_status, raw_payload, created_at`

// uniqueViolation is the Postgres error code for unique-constraint violations
const uniqueViolation = "23505"

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the order record. The unique constraint on
// external_order_id is the idempotency anchor: a 23505 violation means a
// concurrent delivery inserted first and is surfaced as ErrDuplicate.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, external_order_id, order_number, display_name, customer_email, customer_name,
			subtotal_minor, tax_minor, shipping_minor, total_minor, currency,
			financial_status, fulfillment_status, raw_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.ExternalOrderID,
		order.OrderNumber,
		order.DisplayName,
		order.CustomerEmail,
		order.CustomerName,
		order.SubtotalMinor,
		order.TaxMinor,
		order.ShippingMinor,
		order.TotalMinor,
		order.Currency,
		order.FinancialStatus,
		order.FulfillmentStatus,
		order.RawPayload,
		order.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return &errors.ErrDuplicate{Resource: "order", Key: order.ExternalOrderID}
		}
		r.logger.Error("Failed to create order",
			zap.String("external_order_id", order.ExternalOrderID),
			zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE external_order_id = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, externalOrderID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: externalOrderID}
	}
	if err != nil {
		r.logger.Error("Failed to get order by external ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var orderNumber, displayName, customerEmail, customerName sql.NullString
	var financialStatus, fulfillmentStatus sql.NullString

	err := row.Scan(
		&order.ID,
		&order.ExternalOrderID,
		&orderNumber,
		&displayName,
		&customerEmail,
		&customerName,
		&order.SubtotalMinor,
		&order.TaxMinor,
		&order.ShippingMinor,
		&order.TotalMinor,
		&order.Currency,
		&financialStatus,
		&fulfillmentStatus,
		&order.RawPayload,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if orderNumber.Valid {
		order.OrderNumber = &orderNumber.String
	}
	if displayName.Valid {
		order.DisplayName = &displayName.String
	}
	if customerEmail.Valid {
		order.CustomerEmail = &customerEmail.String
	}
	if customerName.Valid {
		order.CustomerName = &customerName.String
	}
	if financialStatus.Valid {
		order.FinancialStatus = &financialStatus.String
	}
	if fulfillmentStatus.Valid {
		order.FulfillmentStatus = &fulfillmentStatus.String
	}

	return &order, nil
}
