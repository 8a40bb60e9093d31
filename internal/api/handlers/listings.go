package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/api/middleware"
	"github.com/craftlane/storefront/internal/commerce"
	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/internal/repository"
	"github.com/craftlane/storefront/internal/service"
	"github.com/craftlane/storefront/pkg/errors"
)

// CreateListingRequest represents a new listing submission
type CreateListingRequest struct {
	Title             string  `json:"title" binding:"required"`
	ExternalProductID string  `json:"external_product_id" binding:"required"`
	ExternalVariantID *string `json:"external_variant_id,omitempty"`
	PriceMinor        int64   `json:"price_minor" binding:"required,min=0"`
	Currency          string  `json:"currency" binding:"required,len=3"`
}

// RejectListingRequest represents an admin rejection
type RejectListingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListingResponse represents a listing in API responses
type ListingResponse struct {
	ID                string  `json:"id"`
	CreatorID         string  `json:"creator_id"`
	Title             string  `json:"title"`
	ExternalProductID string  `json:"external_product_id"`
	ExternalVariantID *string `json:"external_variant_id,omitempty"`
	PriceMinor        int64   `json:"price_minor"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status"`
	RejectionReason   *string `json:"rejection_reason,omitempty"`
	SoldAt            *string `json:"sold_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// HandleCreateListing handles POST /v1/listings
func HandleCreateListing(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creator, ok := middleware.GetCreatorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CreateListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		listing := &domain.Listing{
			CreatorID:         creator.ID,
			Title:             req.Title,
			ExternalProductID: req.ExternalProductID,
			ExternalVariantID: req.ExternalVariantID,
			PriceMinor:        req.PriceMinor,
			Currency:          req.Currency,
			Status:            domain.ListingStatusDraft,
		}

		if err := repos.Listing.Create(c.Request.Context(), listing); err != nil {
			logger.Error("Failed to create listing", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create listing"})
			return
		}

		c.JSON(http.StatusCreated, listingResponse(listing))
	}
}

// HandleSubmitListing handles POST /v1/listings/:id/submit
func HandleSubmitListing(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creator, ok := middleware.GetCreatorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		listingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
			return
		}

		listingService := service.NewListingService(repos, nil, logger)
		if err := listingService.SubmitListing(c.Request.Context(), creator.ID, listingID); err != nil {
			respondListingError(c, logger, err, "Failed to submit listing")
			return
		}

		listing, _ := repos.Listing.GetByID(c.Request.Context(), listingID)
		c.JSON(http.StatusOK, listingResponse(listing))
	}
}

// HandleMyListings handles GET /v1/listings
func HandleMyListings(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creator, ok := middleware.GetCreatorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, offset := paginationParams(c)

		listings, err := repos.Listing.ListByCreator(c.Request.Context(), creator.ID, limit, offset)
		if err != nil {
			logger.Error("Failed to list listings", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]ListingResponse, len(listings))
		for i, listing := range listings {
			responses[i] = listingResponse(listing)
		}

		c.JSON(http.StatusOK, gin.H{
			"listings": responses,
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// HandleAdminListListings handles GET /v1/admin/listings
func HandleAdminListListings(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		statusStr := c.DefaultQuery("status", string(domain.ListingStatusPendingApproval))
		status := domain.ListingStatus(statusStr)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		limit, offset := paginationParams(c)

		listings, err := repos.Listing.ListByStatus(c.Request.Context(), status, limit, offset)
		if err != nil {
			logger.Error("Failed to list listings by status", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]ListingResponse, len(listings))
		for i, listing := range listings {
			responses[i] = listingResponse(listing)
		}

		c.JSON(http.StatusOK, gin.H{
			"listings": responses,
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// HandleApproveListing handles POST /v1/admin/listings/:id/approve
func HandleApproveListing(repos *repository.Repositories, client *commerce.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
			return
		}

		listingService := service.NewListingService(repos, client, logger)
		if err := listingService.ApproveListing(c.Request.Context(), listingID); err != nil {
			respondListingError(c, logger, err, "Failed to approve listing")
			return
		}

		listing, _ := repos.Listing.GetByID(c.Request.Context(), listingID)
		c.JSON(http.StatusOK, listingResponse(listing))
	}
}

// HandleRejectListing handles POST /v1/admin/listings/:id/reject
func HandleRejectListing(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
			return
		}

		var req RejectListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		listingService := service.NewListingService(repos, nil, logger)
		if err := listingService.RejectListing(c.Request.Context(), listingID, req.Reason); err != nil {
			respondListingError(c, logger, err, "Failed to reject listing")
			return
		}

		listing, _ := repos.Listing.GetByID(c.Request.Context(), listingID)
		c.JSON(http.StatusOK, listingResponse(listing))
	}
}

func respondListingError(c *gin.Context, logger *zap.Logger, err error, logMessage string) {
	switch err.(type) {
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(logMessage, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func listingResponse(listing *domain.Listing) ListingResponse {
	resp := ListingResponse{
		ID:                listing.ID.String(),
		CreatorID:         listing.CreatorID.String(),
		Title:             listing.Title,
		ExternalProductID: listing.ExternalProductID,
		ExternalVariantID: listing.ExternalVariantID,
		PriceMinor:        listing.PriceMinor,
		Currency:          listing.Currency,
		Status:            string(listing.Status),
		RejectionReason:   listing.RejectionReason,
		CreatedAt:         listing.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:         listing.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if listing.SoldAt != nil {
		soldAt := listing.SoldAt.Format("2006-01-02T15:04:05Z07:00")
		resp.SoldAt = &soldAt
	}
	return resp
}

func paginationParams(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
