package listing

import (
	"context"
	"time"

	"neighborly/internal/domain"
)

// Store is the persistence surface of the listing lifecycle. Lifecycle
// moves are conditional updates keyed on the expected source statuses;
// zero matched rows surfaces as ErrStaleState.
type Store interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Listing, error)
	ListPublished(ctx context.Context, tenantID string) ([]domain.Listing, error)
	ListByCreator(ctx context.Context, tenantID, userID string) ([]domain.Listing, error)
	TransitionStatus(ctx context.Context, id string, from []domain.ListingStatus, patch map[string]any) error
	Publish(ctx context.Context, id string, now time.Time) error
	Cancel(ctx context.Context, id, reason string, now time.Time) error
	Archive(ctx context.Context, id, archivedBy string, now time.Time) error
	Unarchive(ctx context.Context, id string, now time.Time) error
	UpdateDraftFields(ctx context.Context, id string, patch map[string]any) error
}
