package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/commerce"
	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/internal/repository"
	"github.com/craftlane/storefront/pkg/errors"
)

type listingService struct {
	repos    *repository.Repositories
	commerce *commerce.Client
	logger   *zap.Logger
}

// NewListingService creates a new listing service. The commerce client
// is optional; without it approval skips platform verification.
func NewListingService(repos *repository.Repositories, client *commerce.Client, logger *zap.Logger) *listingService {
	return &listingService{
		repos:    repos,
		commerce: client,
		logger:   logger,
	}
}

// SubmitListing moves a draft listing into review
func (s *listingService) SubmitListing(ctx context.Context, creatorID, listingID uuid.UUID) error {
	listing, err := s.getOwnedListing(ctx, creatorID, listingID)
	if err != nil {
		return err
	}

	if !listing.Status.CanTransitionTo(domain.ListingStatusPendingApproval) {
		return &errors.ErrInvalidStateTransition{
			From: string(listing.Status),
			To:   string(domain.ListingStatusPendingApproval),
		}
	}

	return s.repos.Listing.UpdateStatus(ctx, listingID, domain.ListingStatusPendingApproval, nil)
}

// ApproveListing takes a listing live. When a commerce client is
// configured the external product reference is verified against the
// platform first; verification failure is logged but does not block
// approval, since the webhook matcher tolerates reference drift anyway.
func (s *listingService) ApproveListing(ctx context.Context, listingID uuid.UUID) error {
	listing, err := s.repos.Listing.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	if !listing.Status.CanTransitionTo(domain.ListingStatusLive) {
		return &errors.ErrInvalidStateTransition{
			From: string(listing.Status),
			To:   string(domain.ListingStatusLive),
		}
	}

	if s.commerce != nil {
		if _, err := s.commerce.GetProductByID(ctx, listing.ExternalProductID); err != nil {
			s.logger.Warn("Platform product verification failed",
				zap.String("listing_id", listingID.String()),
				zap.String("external_product_id", listing.ExternalProductID),
				zap.Error(err))
		}
	}

	if err := s.repos.Listing.UpdateStatus(ctx, listingID, domain.ListingStatusLive, nil); err != nil {
		return err
	}

	s.logActivity(ctx, listing, "listing_approved", "Listing %q is now live")

	return nil
}

// RejectListing declines a pending listing with a reason
func (s *listingService) RejectListing(ctx context.Context, listingID uuid.UUID, reason string) error {
	listing, err := s.repos.Listing.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	if !listing.Status.CanTransitionTo(domain.ListingStatusRejected) {
		return &errors.ErrInvalidStateTransition{
			From: string(listing.Status),
			To:   string(domain.ListingStatusRejected),
		}
	}

	if err := s.repos.Listing.UpdateStatus(ctx, listingID, domain.ListingStatusRejected, &reason); err != nil {
		return err
	}

	s.logActivity(ctx, listing, "listing_rejected", "Listing %q was rejected")

	return nil
}

func (s *listingService) getOwnedListing(ctx context.Context, creatorID, listingID uuid.UUID) (*domain.Listing, error) {
	listing, err := s.repos.Listing.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.CreatorID != creatorID {
		return nil, &errors.ErrNotFound{Resource: "listing", ID: listingID.String()}
	}
	return listing, nil
}

// logActivity appends a feed entry, best-effort
func (s *listingService) logActivity(ctx context.Context, listing *domain.Listing, activityType, descriptionFormat string) {
	entry := &domain.ActivityLogEntry{
		CreatorID:    listing.CreatorID,
		ActivityType: activityType,
		EntityType:   "listing",
		EntityID:     listing.ID,
		Description:  fmt.Sprintf(descriptionFormat, listing.Title),
		Metadata: map[string]interface{}{
			"listing_id": listing.ID.String(),
		},
	}

	if err := s.repos.Activity.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to append listing activity",
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
	}
}
