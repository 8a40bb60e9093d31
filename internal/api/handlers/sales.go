package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/api/middleware"
	"github.com/craftlane/storefront/internal/repository"
	"github.com/craftlane/storefront/internal/service"
)

// SaleResponse represents one sold line item in the sales report
type SaleResponse struct {
	OrderID         string  `json:"order_id"`
	ExternalOrderID string  `json:"external_order_id"`
	ListingID       string  `json:"listing_id"`
	Title           string  `json:"title"`
	VariantTitle    *string `json:"variant_title,omitempty"`
	Quantity        int     `json:"quantity"`
	UnitPriceMinor  int64   `json:"unit_price_minor"`
	LineTotalMinor  int64   `json:"line_total_minor"`
	Currency        string  `json:"currency"`
	SoldAt          string  `json:"sold_at"`
}

// PayoutSummaryResponse aggregates gross sales per currency
type PayoutSummaryResponse struct {
	Currency   string `json:"currency"`
	ItemsSold  int    `json:"items_sold"`
	UnitsSold  int    `json:"units_sold"`
	GrossMinor int64  `json:"gross_minor"`
}

// HandleListSales handles GET /v1/sales
func HandleListSales(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creator, ok := middleware.GetCreatorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, offset := paginationParams(c)

		salesService := service.NewSalesService(repos, logger)
		records, err := salesService.ListSales(c.Request.Context(), creator.ID, limit, offset)
		if err != nil {
			logger.Error("Failed to list sales", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]SaleResponse, len(records))
		for i, record := range records {
			responses[i] = SaleResponse{
				OrderID:         record.Order.ID.String(),
				ExternalOrderID: record.Order.ExternalOrderID,
				ListingID:       record.Item.ListingID.String(),
				Title:           record.Item.Title,
				VariantTitle:    record.Item.VariantTitle,
				Quantity:        record.Item.Quantity,
				UnitPriceMinor:  record.Item.UnitPriceMinor,
				LineTotalMinor:  record.Item.LineTotalMinor,
				Currency:        record.Order.Currency,
				SoldAt:          record.Item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"sales":  responses,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// HandlePayoutSummary handles GET /v1/sales/summary
func HandlePayoutSummary(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creator, ok := middleware.GetCreatorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		salesService := service.NewSalesService(repos, logger)
		summaries, err := salesService.PayoutSummary(c.Request.Context(), creator.ID)
		if err != nil {
			logger.Error("Failed to build payout summary", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]PayoutSummaryResponse, len(summaries))
		for i, summary := range summaries {
			responses[i] = PayoutSummaryResponse{
				Currency:   summary.Currency,
				ItemsSold:  summary.ItemsSold,
				UnitsSold:  summary.UnitsSold,
				GrossMinor: summary.GrossMinor,
			}
		}

		c.JSON(http.StatusOK, gin.H{"summary": responses})
	}
}
