package exchange

import (
	"context"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/modules/notification"
)

// TransactionStore is the persistence surface of the state machine.
// Every Transition-style call is a conditional update keyed on the
// expected source status and reports ErrStaleState on zero rows.
type TransactionStore interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Transaction, error)
	ListForUser(ctx context.Context, tenantID, userID string) ([]domain.Transaction, error)
	Transition(ctx context.Context, id string, from domain.TransactionStatus, patch map[string]any) error
	RequestExtension(ctx context.Context, id string, newDate time.Time, message string, now time.Time) error
	ResolveExtension(ctx context.Context, id string, approve bool, now time.Time) error
	Cancel(ctx context.Context, id string, from domain.TransactionStatus, reason string, now time.Time) error
}

// ListingStore covers the quantity bookkeeping the state machine does
// against listings.
type ListingStore interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Listing, error)
	ReserveQuantity(ctx context.Context, id string, qty int) error
	RestoreQuantity(ctx context.Context, id string, qty int) error
}

// Dispatcher delivers notifications. The bool reports whether a row
// was actually created or an earlier dispatch already covered the
// triple. Dispatch failures never roll back a completed transition.
type Dispatcher interface {
	Dispatch(ctx context.Context, in notification.DispatchInput) (*domain.Notification, bool, error)
}

// NameDirectory resolves user display names for notification text.
type NameDirectory interface {
	DisplayName(ctx context.Context, id string) string
}

// TenantDirectory resolves tenant slugs for notification action URLs.
type TenantDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}
