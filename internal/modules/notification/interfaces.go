package notification

import (
	"context"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/repository"
)

// Store is the persistence surface the dispatch engine needs.
type Store interface {
	FindBySubject(ctx context.Context, subject domain.SubjectRef, typ domain.NotificationType, recipientID string) (*domain.Notification, error)
	Insert(ctx context.Context, n *domain.Notification) error
	ListForRecipient(ctx context.Context, tenantID, recipientID string, f repository.NotificationFilters, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, tenantID, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string, now time.Time) error
	MarkAllRead(ctx context.Context, tenantID, recipientID string, now time.Time) error
	Archive(ctx context.Context, id, recipientID string) error
	TakeAction(ctx context.Context, id, recipientID string, resp domain.ActionResponse) error
}
