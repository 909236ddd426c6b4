package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"neighborly/internal/domain"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func subjectColumn(kind domain.SubjectKind) (string, error) {
	switch kind {
	case domain.SubjectTransaction:
		return "exchange_transaction_id", nil
	case domain.SubjectListing:
		return "exchange_listing_id", nil
	case domain.SubjectEvent:
		return "event_id", nil
	case domain.SubjectDocument:
		return "document_id", nil
	case domain.SubjectCheckIn:
		return "check_in_id", nil
	}
	return "", fmt.Errorf("unknown subject kind %q", kind)
}

// FindBySubject looks up the notification for one
// (subject, type, recipient) triple. Returns nil without error when
// none exists.
func (r *NotificationRepository) FindBySubject(ctx context.Context, subject domain.SubjectRef, typ domain.NotificationType, recipientID string) (*domain.Notification, error) {
	col, err := subjectColumn(subject.Kind)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where(col+" = ? AND type = ? AND recipient_id = ?", subject.ID, typ, recipientID)
	if subject.Kind == domain.SubjectListing {
		// Transaction notifications carry the listing as a secondary
		// reference; only rows where the listing is the subject count.
		q = q.Where("exchange_transaction_id IS NULL")
	}

	var n domain.Notification
	err = q.First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Insert creates the notification row. A unique-constraint conflict is
// reported as ErrDuplicate so the dispatcher can resolve the race by
// returning the row the concurrent writer created.
func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Create(n).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// modernc sqlite reports constraint errors as plain strings.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Filters narrows a recipient's notification list. Nil fields are not
// applied.
type NotificationFilters struct {
	Type           *domain.NotificationType
	IsRead         *bool
	IsArchived     *bool
	ActionRequired *bool
	ActionTaken    *bool
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, tenantID, recipientID string, f NotificationFilters, limit int) ([]domain.Notification, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND recipient_id = ?", tenantID, recipientID).
		Order("created_at DESC")

	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	if f.IsArchived != nil {
		q = q.Where("is_archived = ?", *f.IsArchived)
	}
	if f.ActionRequired != nil {
		q = q.Where("action_required = ?", *f.ActionRequired)
	}
	if f.ActionTaken != nil {
		q = q.Where("action_taken = ?", *f.ActionTaken)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []domain.Notification
	err := q.Find(&out).Error
	return out, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, tenantID, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("tenant_id = ? AND recipient_id = ? AND is_read = ? AND is_archived = ?", tenantID, recipientID, false, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, tenantID, recipientID string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("tenant_id = ? AND recipient_id = ? AND is_read = ?", tenantID, recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error
}

func (r *NotificationRepository) Archive(ctx context.Context, id, recipientID string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_archived", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TakeAction records the recipient's response on an action-required
// notification exactly once.
func (r *NotificationRepository) TakeAction(ctx context.Context, id, recipientID string, resp domain.ActionResponse) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND recipient_id = ? AND action_required = ? AND action_taken = ?", id, recipientID, true, false).
		Updates(map[string]any{
			"action_taken":    true,
			"action_response": resp,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
