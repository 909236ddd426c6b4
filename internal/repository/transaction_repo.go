package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"neighborly/internal/domain"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) ListForUser(ctx context.Context, tenantID, userID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (borrower_id = ? OR lender_id = ?)", tenantID, userID, userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Transition performs guard-check-then-mutate as one conditional
// update: the row must still be in the expected source status and not
// cancelled. Zero matched rows means a concurrent transition (or a
// caller holding stale data) won; the state machine reports that as an
// invalid transition.
func (r *TransactionRepository) Transition(ctx context.Context, id string, from domain.TransactionStatus, patch map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND status = ? AND cancelled_at IS NULL", id, from).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *TransactionRepository) RequestExtension(ctx context.Context, id string, newDate time.Time, message string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND status IN ? AND cancelled_at IS NULL AND extension_requested = ?",
			id,
			[]domain.TransactionStatus{domain.TransactionConfirmed, domain.TransactionPickedUp},
			false).
		Updates(map[string]any{
			"extension_requested": true,
			"extension_new_date":  newDate,
			"extension_message":   message,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// ResolveExtension clears the pending extension request; on approval
// the expected return date moves to the requested date in the same
// statement.
func (r *TransactionRepository) ResolveExtension(ctx context.Context, id string, approve bool, now time.Time) error {
	patch := map[string]any{
		"extension_requested": false,
		"extension_new_date":  nil,
		"extension_message":   "",
		"updated_at":          now,
	}
	if approve {
		patch["expected_return_date"] = gorm.Expr("extension_new_date")
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND extension_requested = ? AND cancelled_at IS NULL", id, true).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// Cancel layers the cancellation marker on top of the pre-cancel
// status. The status itself is left untouched.
func (r *TransactionRepository) Cancel(ctx context.Context, id string, from domain.TransactionStatus, reason string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND status = ? AND cancelled_at IS NULL", id, from).
		Updates(map[string]any{
			"cancelled_at":        now,
			"cancellation_reason": reason,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// ListAwaitingReturn loads every transaction the return-date monitor
// has to look at: confirmed or picked up, not cancelled, with a known
// return date. Confirmed is included because the return date locks in
// at confirmation, before the handover is recorded.
func (r *TransactionRepository) ListAwaitingReturn(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("status IN ? AND cancelled_at IS NULL AND expected_return_date IS NOT NULL",
			[]domain.TransactionStatus{domain.TransactionConfirmed, domain.TransactionPickedUp}).
		Find(&out).Error
	return out, err
}

// SumActiveQuantity returns the quantity currently held against a
// listing by transactions that still reserve stock.
func (r *TransactionRepository) SumActiveQuantity(ctx context.Context, listingID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("listing_id = ? AND cancelled_at IS NULL AND status IN ?",
			listingID,
			[]domain.TransactionStatus{domain.TransactionRequested, domain.TransactionConfirmed, domain.TransactionPickedUp, domain.TransactionReturned}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}
