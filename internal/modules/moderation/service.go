package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neighborly/internal/domain"
	"neighborly/internal/modules/notification"
	"neighborly/internal/pkg/logger"
	"neighborly/internal/repository"
)

type Service struct {
	flags      FlagStore
	listings   ListingStore
	dispatcher Dispatcher
	tenants    TenantDirectory
	log        *zap.Logger
}

func NewService(flags FlagStore, listings ListingStore, dispatcher Dispatcher, tenants TenantDirectory) *Service {
	return &Service{
		flags:      flags,
		listings:   listings,
		dispatcher: dispatcher,
		tenants:    tenants,
		log:        logger.Get(),
	}
}

// Flag records a resident's report against a listing. The first flag
// flips the listing's flagged state and notifies the owner; repeat
// flags by other residents pile onto the existing state. One resident
// can flag a listing once.
func (s *Service) Flag(ctx context.Context, tenantID, listingID, userID, reason string) (*domain.Flag, error) {
	listing, err := s.listings.GetByID(ctx, tenantID, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.CreatedBy == userID {
		return nil, fmt.Errorf("%w: cannot flag your own listing", ErrValidation)
	}

	exists, err := s.flags.ExistsForUser(ctx, listingID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFlagged
	}

	f := &domain.Flag{
		TenantID:  tenantID,
		ListingID: listingID,
		FlaggedBy: userID,
		Reason:    reason,
	}
	if err := s.flags.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyFlagged
		}
		return nil, err
	}

	first, err := s.listings.MarkFlagged(ctx, listingID, time.Now())
	if err != nil {
		s.log.Error("failed to mark listing flagged",
			zap.String("listing_id", listingID), zap.Error(err))
	}
	if first {
		s.log.Info("listing flagged",
			zap.String("listing_id", listingID),
			zap.String("tenant_id", tenantID))
	}

	// The dispatch engine dedupes on (listing, type, owner), so repeat
	// flags cannot spam the owner.
	s.dispatchQuiet(ctx, notification.DispatchInput{
		TenantID:    tenantID,
		RecipientID: listing.CreatedBy,
		Type:        domain.NotifExchangeFlagged,
		Subject:     domain.SubjectRef{Kind: domain.SubjectListing, ID: listingID},
		ActorID:     userID,
		ActionURL:   s.actionURL(ctx, tenantID),
		Content: notification.Content{
			ListingTitle: listing.Title,
			Reason:       reason,
		},
	})
	return f, nil
}

func (s *Service) ListFlags(ctx context.Context, tenantID, listingID string) ([]domain.Flag, error) {
	if _, err := s.listings.GetByID(ctx, tenantID, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.flags.ListByListing(ctx, listingID)
}

// UnflagAll is the moderator resolving every open flag on a listing.
// Each flagger is told their report was reviewed; a failed dispatch is
// logged and the fan-out continues.
func (s *Service) UnflagAll(ctx context.Context, tenantID, listingID string) error {
	listing, err := s.listings.GetByID(ctx, tenantID, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	flags, err := s.flags.ListByListing(ctx, listingID)
	if err != nil {
		return err
	}

	if err := s.flags.DeleteByListing(ctx, listingID); err != nil {
		return err
	}
	if err := s.listings.ClearFlagged(ctx, listingID); err != nil {
		return err
	}

	url := s.actionURL(ctx, tenantID)
	for _, f := range flags {
		s.dispatchQuiet(ctx, notification.DispatchInput{
			TenantID:    tenantID,
			RecipientID: f.FlaggedBy,
			Type:        domain.NotifExchangeFlagResolved,
			Subject:     domain.SubjectRef{Kind: domain.SubjectListing, ID: listingID},
			ActionURL:   url,
			Content: notification.Content{
				ListingTitle: listing.Title,
			},
		})
	}
	s.log.Info("listing flags resolved",
		zap.String("listing_id", listingID),
		zap.Int("flag_count", len(flags)))
	return nil
}

func (s *Service) dispatchQuiet(ctx context.Context, in notification.DispatchInput) {
	if _, _, err := s.dispatcher.Dispatch(ctx, in); err != nil {
		s.log.Error("notification dispatch failed",
			zap.String("type", string(in.Type)),
			zap.String("recipient_id", in.RecipientID),
			zap.Error(err))
	}
}

func (s *Service) actionURL(ctx context.Context, tenantID string) string {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("/t/%s/dashboard?tab=listings", tenant.Slug)
}
