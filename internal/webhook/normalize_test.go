package webhook

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("normalizes a complete order", func(t *testing.T) {
		raw := []byte(`{
			"id": 5001,
			"order_number": 1001,
			"name": "#1001",
			"email": " Ada@Example.COM ",
			"currency": "usd",
			"financial_status": "paid",
			"total_price": "29.99",
			"subtotal_price": "27.99",
			"total_tax": "2.00",
			"total_shipping": "0.00",
			"customer": {"first_name": "Ada", "last_name": "Lovelace"},
			"line_items": [
				{"id": 1, "product_id": 9001, "variant_id": 111, "quantity": 1, "price": "29.99", "title": "Print", "variant_title": "A4"}
			]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)

		assert.Equal(t, "5001", order.ExternalOrderID)
		require.NotNil(t, order.OrderNumber)
		assert.Equal(t, "1001", *order.OrderNumber)
		require.NotNil(t, order.DisplayName)
		assert.Equal(t, "#1001", *order.DisplayName)
		assert.Equal(t, "USD", order.Currency)
		assert.Equal(t, int64(2999), order.TotalMinor)
		assert.Equal(t, int64(2799), order.SubtotalMinor)
		assert.Equal(t, int64(200), order.TaxMinor)
		assert.Equal(t, int64(0), order.ShippingMinor)
		require.NotNil(t, order.CustomerEmail)
		assert.Equal(t, "ada@example.com", *order.CustomerEmail)
		require.NotNil(t, order.CustomerName)
		assert.Equal(t, "Ada Lovelace", *order.CustomerName)
		assert.Equal(t, raw, order.Raw)

		require.Len(t, order.LineItems, 1)
		item := order.LineItems[0]
		assert.Equal(t, "9001", item.ExternalProductID)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, int64(2999), item.UnitPriceMinor)
		assert.True(t, item.Valid)
	})

	t.Run("rounds prices and floors quantities", func(t *testing.T) {
		raw := []byte(`{
			"id": "5002", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "9001", "quantity": "2.7", "price": "19.999"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		require.Len(t, order.LineItems, 1)

		assert.Equal(t, int64(2000), order.LineItems[0].UnitPriceMinor)
		assert.Equal(t, 2, order.LineItems[0].Quantity)
		assert.True(t, order.LineItems[0].Valid)
	})

	t.Run("quantity has a minimum of 1", func(t *testing.T) {
		raw := []byte(`{
			"id": "5003", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "9001", "quantity": "0.5", "price": "1.00"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		assert.Equal(t, 1, order.LineItems[0].Quantity)
	})

	t.Run("non-finite quantity marks the item invalid", func(t *testing.T) {
		for _, qty := range []string{"inf", "+Inf", "-inf", "nan", "NaN"} {
			raw := []byte(`{
				"id": "5014", "currency": "USD",
				"line_items": [{"id": 1, "product_id": "9001", "quantity": "` + qty + `", "price": "1.00"}]
			}`)

			order, fieldErr := Normalize(raw)
			require.Nil(t, fieldErr)
			assert.False(t, order.LineItems[0].Valid, "quantity %q should not be sellable", qty)
		}
	})

	t.Run("absurdly large quantity marks the item invalid", func(t *testing.T) {
		raw := []byte(`{
			"id": "5015", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "9001", "quantity": "1e30", "price": "1.00"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		assert.False(t, order.LineItems[0].Valid)
	})

	t.Run("negative prices clamp to zero", func(t *testing.T) {
		raw := []byte(`{
			"id": "5004", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "9001", "quantity": 1, "price": "-5.00"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		assert.Equal(t, int64(0), order.LineItems[0].UnitPriceMinor)
		assert.True(t, order.LineItems[0].Valid)
	})

	t.Run("unparsable price marks the item invalid but not the order", func(t *testing.T) {
		raw := []byte(`{
			"id": "5005", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "9001", "quantity": 1, "price": "free"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		assert.False(t, order.LineItems[0].Valid)
	})

	t.Run("accepts structured product identifiers", func(t *testing.T) {
		raw := []byte(`{
			"id": "5006", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "gid://shopify/Product/9001", "quantity": 1, "price": "1.00"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		assert.Equal(t, "gid://shopify/Product/9001", order.LineItems[0].ExternalProductID)
	})

	t.Run("invalid email becomes nil", func(t *testing.T) {
		raw := []byte(`{"id": "5007", "currency": "USD", "email": "not-an-email", "line_items": []}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		assert.Nil(t, order.CustomerEmail)
	})

	t.Run("falls back to the customer email", func(t *testing.T) {
		raw := []byte(`{
			"id": "5008", "currency": "USD",
			"customer": {"first_name": "Ada", "email": "ada@example.com"},
			"line_items": []
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		require.NotNil(t, order.CustomerEmail)
		assert.Equal(t, "ada@example.com", *order.CustomerEmail)
		require.NotNil(t, order.CustomerName)
		assert.Equal(t, "Ada", *order.CustomerName)
	})

	t.Run("truncates oversized titles", func(t *testing.T) {
		longTitle := strings.Repeat("x", 600)
		raw := []byte(`{
			"id": "5009", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "9001", "quantity": 1, "price": "1.00", "title": "` + longTitle + `"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		assert.Len(t, order.LineItems[0].Title, maxTitleLen)
	})

	t.Run("truncation never splits a multi-byte rune", func(t *testing.T) {
		// maxTitleLen-1 ASCII bytes, then a 3-byte rune straddling the cap
		title := strings.Repeat("x", maxTitleLen-1) + "日本"
		raw := []byte(`{
			"id": "5016", "currency": "USD",
			"line_items": [{"id": 1, "product_id": "9001", "quantity": 1, "price": "1.00", "title": "` + title + `"}]
		}`)

		order, fieldErr := Normalize(raw)
		require.Nil(t, fieldErr)
		got := order.LineItems[0].Title
		assert.True(t, utf8.ValidString(got))
		assert.Len(t, got, maxTitleLen-1)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, fieldErr := Normalize([]byte(`{"id":`))
		require.NotNil(t, fieldErr)
		assert.Equal(t, "payload", fieldErr.Field)
	})

	t.Run("missing order id", func(t *testing.T) {
		_, fieldErr := Normalize([]byte(`{"currency": "USD", "line_items": []}`))
		require.NotNil(t, fieldErr)
		assert.Equal(t, "id", fieldErr.Field)
	})

	t.Run("invalid currency", func(t *testing.T) {
		_, fieldErr := Normalize([]byte(`{"id": "5010", "currency": "us", "line_items": []}`))
		require.NotNil(t, fieldErr)
		assert.Equal(t, "currency", fieldErr.Field)
	})

	t.Run("missing line items", func(t *testing.T) {
		_, fieldErr := Normalize([]byte(`{"id": "5011", "currency": "USD"}`))
		require.NotNil(t, fieldErr)
		assert.Equal(t, "line_items", fieldErr.Field)
	})

	t.Run("null line items", func(t *testing.T) {
		_, fieldErr := Normalize([]byte(`{"id": "5012", "currency": "USD", "line_items": null}`))
		require.NotNil(t, fieldErr)
		assert.Equal(t, "line_items", fieldErr.Field)
	})

	t.Run("empty line items array is valid", func(t *testing.T) {
		order, fieldErr := Normalize([]byte(`{"id": "5013", "currency": "USD", "line_items": []}`))
		require.Nil(t, fieldErr)
		assert.Empty(t, order.LineItems)
	})
}
