package webhook

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxEmailLen        = 255
	maxNameLen         = 255
	maxTitleLen        = 512
	maxVariantTitleLen = 255
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError names the first missing or invalid required field of a
// webhook payload
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Message)
}

// NormalizedOrder is the canonical representation of an inbound order.
// Monetary fields are integer minor-currency units. Raw retains the
// verified body byte-exact for audit.
type NormalizedOrder struct {
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
	LineItems         []NormalizedLineItem
	Raw               []byte
}

// NormalizedLineItem carries a sanitized line item. Valid is false when
// the price or quantity could not be parsed to a finite value; such
// items are skipped by the matcher, never fatal to the order.
type NormalizedLineItem struct {
	ExternalLineItemID string
	ExternalProductID  string
	ExternalVariantID  *string
	Title              string
	VariantTitle       *string
	Quantity           int
	UnitPriceMinor     int64
	Valid              bool
}

// flexString accepts a JSON string or number, since the platform has
// sent ids both ways over time
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(data))
	return nil
}

type rawOrder struct {
	ID                flexString      `json:"id"`
	OrderNumber       flexString      `json:"order_number"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Currency          string          `json:"currency"`
	FinancialStatus   string          `json:"financial_status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	TotalPrice        string          `json:"total_price"`
	SubtotalPrice     string          `json:"subtotal_price"`
	TotalTax          string          `json:"total_tax"`
	TotalShipping     string          `json:"total_shipping"`
	Customer          *rawCustomer    `json:"customer"`
	LineItems         json.RawMessage `json:"line_items"`
}

type rawCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type rawLineItem struct {
	ID           flexString `json:"id"`
	ProductID    flexString `json:"product_id"`
	VariantID    flexString `json:"variant_id"`
	Quantity     flexString `json:"quantity"`
	Price        flexString `json:"price"`
	Title        string     `json:"title"`
	VariantTitle string     `json:"variant_title"`
}

// Normalize parses the verified raw body into a canonical order.
// It validates the required shape (order id, currency, line-items
// array) and sanitizes everything else: invalid optional values become
// nil rather than rejecting the whole order.
func Normalize(raw []byte) (*NormalizedOrder, *FieldError) {
	var payload rawOrder
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &FieldError{Field: "payload", Message: "malformed JSON"}
	}

	externalOrderID := strings.TrimSpace(string(payload.ID))
	if externalOrderID == "" {
		return nil, &FieldError{Field: "id", Message: "required"}
	}

	currency := strings.ToUpper(strings.TrimSpace(payload.Currency))
	if len(currency) != 3 {
		return nil, &FieldError{Field: "currency", Message: "must be a 3-letter code"}
	}

	if payload.LineItems == nil || string(payload.LineItems) == "null" {
		return nil, &FieldError{Field: "line_items", Message: "required"}
	}
	var rawItems []rawLineItem
	if err := json.Unmarshal(payload.LineItems, &rawItems); err != nil {
		return nil, &FieldError{Field: "line_items", Message: "must be an array"}
	}

	order := &NormalizedOrder{
		ExternalOrderID:   externalOrderID,
		DisplayName:       optionalString(payload.Name, maxNameLen),
		Currency:          currency,
		FinancialStatus:   optionalString(payload.FinancialStatus, maxNameLen),
		FulfillmentStatus: optionalString(payload.FulfillmentStatus, maxNameLen),
		SubtotalMinor:     minorUnits(payload.SubtotalPrice),
		TaxMinor:          minorUnits(payload.TotalTax),
		ShippingMinor:     minorUnits(payload.TotalShipping),
		TotalMinor:        minorUnits(payload.TotalPrice),
		Raw:               raw,
	}

	if number := strings.TrimSpace(string(payload.OrderNumber)); number != "" {
		order.OrderNumber = &number
	}

	email := payload.Email
	if email == "" && payload.Customer != nil {
		email = payload.Customer.Email
	}
	order.CustomerEmail = sanitizeEmail(email)

	if payload.Customer != nil {
		order.CustomerName = sanitizeName(payload.Customer.FirstName, payload.Customer.LastName)
	}

	order.LineItems = make([]NormalizedLineItem, 0, len(rawItems))
	for _, raw := range rawItems {
		order.LineItems = append(order.LineItems, normalizeLineItem(raw))
	}

	return order, nil
}

func normalizeLineItem(raw rawLineItem) NormalizedLineItem {
	item := NormalizedLineItem{
		ExternalLineItemID: strings.TrimSpace(string(raw.ID)),
		ExternalProductID:  strings.TrimSpace(string(raw.ProductID)),
		ExternalVariantID:  optionalString(string(raw.VariantID), maxNameLen),
		Title:              truncate(strings.TrimSpace(raw.Title), maxTitleLen),
		VariantTitle:       optionalString(raw.VariantTitle, maxVariantTitleLen),
		Valid:              true,
	}

	quantity, ok := parseQuantity(string(raw.Quantity))
	if !ok {
		item.Valid = false
	}
	item.Quantity = quantity

	price, ok := parseMinorUnits(string(raw.Price))
	if !ok {
		item.Valid = false
	}
	item.UnitPriceMinor = price

	return item
}

// maxQuantity bounds a single line item; anything above it is treated
// as unparsable rather than risking an out-of-range float-to-int
// conversion
const maxQuantity = 1_000_000

// parseQuantity floors to an integer with a minimum of 1. Non-finite
// values (ParseFloat accepts "inf" and "nan" spellings) are rejected.
func parseQuantity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > maxQuantity {
		return 1, false
	}
	qty := int(f)
	if qty < 1 {
		qty = 1
	}
	return qty, true
}

// parseMinorUnits converts a decimal string to minor currency units,
// rounded, clamped to non-negative
func parseMinorUnits(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	minor := d.Mul(decimal.NewFromInt(100)).Round(0)
	if minor.IsNegative() {
		return 0, true
	}
	return minor.IntPart(), true
}

// minorUnits is parseMinorUnits for order-level totals where a parse
// failure just means zero
func minorUnits(s string) int64 {
	v, _ := parseMinorUnits(s)
	return v
}

func sanitizeEmail(s string) *string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > maxEmailLen || !emailPattern.MatchString(s) {
		return nil
	}
	return &s
}

func sanitizeName(first, last string) *string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return nil
	}
	name = truncate(name, maxNameLen)
	return &name
}

func optionalString(s string, max int) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = truncate(s, max)
	return &s
}

// truncate caps s at max bytes without splitting a multi-byte rune,
// keeping the result valid UTF-8 for Postgres
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
