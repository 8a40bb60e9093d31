package postgres

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/pkg/errors"
)

func newOrderRepoMock(t *testing.T) (*orderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(db, zap.NewNop()), mock
}

func orderRows(order *domain.Order) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "external_order_id", "order_number", "display_name", "customer_email", "customer_name",
		"subtotal_minor", "tax_minor", "shipping_minor", "total_minor", "currency",
		"financial_status", "fulfillment_status", "raw_payload", "created_at",
	}).AddRow(
		order.ID, order.ExternalOrderID, nil, nil, nil, nil,
		order.SubtotalMinor, order.TaxMinor, order.ShippingMinor, order.TotalMinor,
		order.Currency, nil, nil,
		order.RawPayload, order.CreatedAt,
	)
}

func TestOrderRepositoryCreate(t *testing.T) {
	t.Run("inserts the order", func(t *testing.T) {
		repo, mock := newOrderRepoMock(t)

		mock.ExpectExec("INSERT INTO orders").
			WillReturnResult(sqlmock.NewResult(0, 1))

		order := &domain.Order{
			ExternalOrderID: "5001",
			TotalMinor:      2999,
			Currency:        "USD",
			RawPayload:      []byte(`{"id":"5001"}`),
		}
		err := repo.Create(context.Background(), order)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, order.ID)
		assert.False(t, order.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a unique violation to ErrDuplicate", func(t *testing.T) {
		repo, mock := newOrderRepoMock(t)

		mock.ExpectExec("INSERT INTO orders").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_external_order_id_key"})

		err := repo.Create(context.Background(), &domain.Order{ExternalOrderID: "5001", Currency: "USD"})
		require.Error(t, err)

		dup, ok := err.(*errors.ErrDuplicate)
		require.True(t, ok, "expected *errors.ErrDuplicate, got %T", err)
		assert.Equal(t, "order", dup.Resource)
		assert.Equal(t, "5001", dup.Key)
	})

	t.Run("passes through other database errors", func(t *testing.T) {
		repo, mock := newOrderRepoMock(t)

		dbErr := stderrors.New("connection reset")
		mock.ExpectExec("INSERT INTO orders").WillReturnError(dbErr)

		err := repo.Create(context.Background(), &domain.Order{ExternalOrderID: "5001", Currency: "USD"})
		assert.Equal(t, dbErr, err)
	})
}

func TestOrderRepositoryGetByExternalOrderID(t *testing.T) {
	t.Run("returns the order", func(t *testing.T) {
		repo, mock := newOrderRepoMock(t)

		want := &domain.Order{
			ID:              uuid.New(),
			ExternalOrderID: "5001",
			TotalMinor:      2999,
			Currency:        "USD",
			RawPayload:      []byte(`{"id":"5001"}`),
			CreatedAt:       time.Now(),
		}
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE external_order_id").
			WithArgs("5001").
			WillReturnRows(orderRows(want))

		got, err := repo.GetByExternalOrderID(context.Background(), "5001")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, int64(2999), got.TotalMinor)
		assert.Nil(t, got.CustomerEmail)
	})

	t.Run("returns ErrNotFound when missing", func(t *testing.T) {
		repo, mock := newOrderRepoMock(t)

		mock.ExpectQuery("SELECT (.+) FROM orders WHERE external_order_id").
			WithArgs("5001").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByExternalOrderID(context.Background(), "5001")
		require.Error(t, err)

		_, ok := err.(*errors.ErrNotFound)
		assert.True(t, ok, "expected *errors.ErrNotFound, got %T", err)
	})
}
