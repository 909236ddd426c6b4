package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neighborly/internal/domain"
	"neighborly/internal/pkg/logger"
	"neighborly/internal/repository"
)

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store) *Service {
	return &Service{store: store, log: logger.Get()}
}

type CreateInput struct {
	TenantID        string
	CreatedBy       string
	CategoryID      string
	Title           string
	Description     string
	PricingType     domain.PricingType
	Price           *float64
	Condition       *domain.ItemCondition
	Quantity        int
	VisibilityScope domain.VisibilityScope
	NeighborhoodIDs []string
}

// Create opens a listing in draft. Nothing is visible to other
// residents until the owner publishes it.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Listing, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if in.PricingType == domain.PricingFixed && (in.Price == nil || *in.Price <= 0) {
		return nil, fmt.Errorf("%w: fixed pricing requires a positive price", ErrValidation)
	}
	if in.VisibilityScope == domain.VisibilityNeighborhood && len(in.NeighborhoodIDs) == 0 {
		return nil, fmt.Errorf("%w: neighborhood visibility requires at least one neighborhood", ErrValidation)
	}

	l := &domain.Listing{
		TenantID:          in.TenantID,
		CreatedBy:         in.CreatedBy,
		CategoryID:        in.CategoryID,
		Title:             in.Title,
		Description:       in.Description,
		Status:            domain.ListingDraft,
		PricingType:       in.PricingType,
		Price:             in.Price,
		Condition:         in.Condition,
		AvailableQuantity: in.Quantity,
		VisibilityScope:   in.VisibilityScope,
	}
	for _, nid := range in.NeighborhoodIDs {
		l.Neighborhoods = append(l.Neighborhoods, domain.ListingNeighborhood{NeighborhoodID: nid})
	}

	if err := s.store.Create(ctx, l); err != nil {
		return nil, err
	}
	s.log.Info("listing created",
		zap.String("listing_id", l.ID),
		zap.String("tenant_id", l.TenantID))
	return l, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*domain.Listing, error) {
	l, err := s.store.GetByID(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return l, err
}

func (s *Service) ListPublished(ctx context.Context, tenantID string) ([]domain.Listing, error) {
	return s.store.ListPublished(ctx, tenantID)
}

func (s *Service) ListMine(ctx context.Context, tenantID, userID string) ([]domain.Listing, error) {
	return s.store.ListByCreator(ctx, tenantID, userID)
}

type UpdateInput struct {
	Title       *string
	Description *string
	CategoryID  *string
	PricingType *domain.PricingType
	Price       *float64
	Condition   *domain.ItemCondition
	Quantity    *int
}

// Update edits content fields while the listing is still in draft or
// paused. Published listings must be paused first so borrowers never
// see a listing change under them.
func (s *Service) Update(ctx context.Context, tenantID, id, actorID string, in UpdateInput) (*domain.Listing, error) {
	if _, err := s.owned(ctx, tenantID, id, actorID); err != nil {
		return nil, err
	}

	patch := map[string]any{"updated_at": time.Now()}
	if in.Title != nil {
		patch["title"] = *in.Title
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.CategoryID != nil {
		patch["category_id"] = *in.CategoryID
	}
	if in.PricingType != nil {
		patch["pricing_type"] = *in.PricingType
	}
	if in.Price != nil {
		patch["price"] = *in.Price
	}
	if in.Condition != nil {
		patch["condition"] = *in.Condition
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		patch["available_quantity"] = *in.Quantity
	}

	if err := s.store.UpdateDraftFields(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

// Publish makes a draft or paused listing visible. The published_at
// stamp is set on the first publish only.
func (s *Service) Publish(ctx context.Context, tenantID, id, actorID string) (*domain.Listing, error) {
	if _, err := s.owned(ctx, tenantID, id, actorID); err != nil {
		return nil, err
	}
	if err := s.store.Publish(ctx, id, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

// Pause hides a published listing without cancelling it. Existing
// transactions keep running.
func (s *Service) Pause(ctx context.Context, tenantID, id, actorID string) (*domain.Listing, error) {
	if _, err := s.owned(ctx, tenantID, id, actorID); err != nil {
		return nil, err
	}
	now := time.Now()
	err := s.store.TransitionStatus(ctx, id,
		[]domain.ListingStatus{domain.ListingPublished},
		map[string]any{"status": domain.ListingPaused, "updated_at": now})
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

// Resume brings a paused listing back to published. The original
// published_at stamp is kept.
func (s *Service) Resume(ctx context.Context, tenantID, id, actorID string) (*domain.Listing, error) {
	if _, err := s.owned(ctx, tenantID, id, actorID); err != nil {
		return nil, err
	}
	now := time.Now()
	err := s.store.TransitionStatus(ctx, id,
		[]domain.ListingStatus{domain.ListingPaused},
		map[string]any{"status": domain.ListingPublished, "updated_at": now})
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

// Cancel is terminal for the listing. Active transactions are left to
// run to completion; no new requests can reserve quantity afterwards.
// Moderators can cancel listings they do not own.
func (s *Service) Cancel(ctx context.Context, tenantID, id, actorID string, actorRole domain.Role, reason string) (*domain.Listing, error) {
	l, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if l.CreatedBy != actorID && actorRole != domain.RoleModerator && actorRole != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if err := s.store.Cancel(ctx, id, reason, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

// Archive is an administrative removal, orthogonal to the lifecycle
// status. Archived listings disappear from every list.
func (s *Service) Archive(ctx context.Context, tenantID, id, adminID string) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	err := s.store.Archive(ctx, id, adminID, time.Now())
	if errors.Is(err, repository.ErrStaleState) {
		return ErrInvalidState
	}
	return err
}

func (s *Service) Unarchive(ctx context.Context, tenantID, id string) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	err := s.store.Unarchive(ctx, id, time.Now())
	if errors.Is(err, repository.ErrStaleState) {
		return ErrInvalidState
	}
	return err
}

func (s *Service) owned(ctx context.Context, tenantID, id, actorID string) (*domain.Listing, error) {
	l, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if l.CreatedBy != actorID {
		return nil, ErrForbidden
	}
	return l, nil
}
