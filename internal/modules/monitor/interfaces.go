package monitor

import (
	"context"

	"neighborly/internal/domain"
	"neighborly/internal/modules/notification"
)

type TransactionStore interface {
	ListAwaitingReturn(ctx context.Context) ([]domain.Transaction, error)
}

type ListingStore interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Listing, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, in notification.DispatchInput) (*domain.Notification, bool, error)
}

type TenantDirectory interface {
	SlugsByIDs(ctx context.Context, ids []string) (map[string]string, error)
}
