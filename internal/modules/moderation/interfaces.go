package moderation

import (
	"context"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/modules/notification"
)

type FlagStore interface {
	Create(ctx context.Context, f *domain.Flag) error
	ExistsForUser(ctx context.Context, listingID, userID string) (bool, error)
	ListByListing(ctx context.Context, listingID string) ([]domain.Flag, error)
	DeleteByListing(ctx context.Context, listingID string) error
}

type ListingStore interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Listing, error)
	MarkFlagged(ctx context.Context, id string, now time.Time) (bool, error)
	ClearFlagged(ctx context.Context, id string) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, in notification.DispatchInput) (*domain.Notification, bool, error)
}

type TenantDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}
