package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"neighborly/internal/domain"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	for i := range l.Neighborhoods {
		if l.Neighborhoods[i].ID == "" {
			l.Neighborhoods[i].ID = uuid.NewString()
		}
		l.Neighborhoods[i].TenantID = l.TenantID
		l.Neighborhoods[i].ListingID = l.ID
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ListingRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) ListPublished(ctx context.Context, tenantID string) ([]domain.Listing, error) {
	var out []domain.Listing
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND archived_at IS NULL", tenantID, domain.ListingPublished).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *ListingRepository) ListByCreator(ctx context.Context, tenantID, userID string) ([]domain.Listing, error) {
	var out []domain.Listing
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND created_by = ?", tenantID, userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// TransitionStatus moves a listing between lifecycle statuses as one
// conditional update. Zero matched rows means the listing was not in
// any of the expected source statuses.
func (r *ListingRepository) TransitionStatus(ctx context.Context, id string, from []domain.ListingStatus, patch map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND status IN ? AND archived_at IS NULL", id, from).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// Publish stamps published_at only on the first publish.
func (r *ListingRepository) Publish(ctx context.Context, id string, now time.Time) error {
	return r.TransitionStatus(ctx,
		id,
		[]domain.ListingStatus{domain.ListingDraft, domain.ListingPaused},
		map[string]any{
			"status":       domain.ListingPublished,
			"published_at": gorm.Expr("COALESCE(published_at, ?)", now),
			"updated_at":   now,
		})
}

func (r *ListingRepository) Cancel(ctx context.Context, id, reason string, now time.Time) error {
	return r.TransitionStatus(ctx,
		id,
		[]domain.ListingStatus{domain.ListingDraft, domain.ListingPublished, domain.ListingPaused},
		map[string]any{
			"status":              domain.ListingCancelled,
			"cancelled_at":        now,
			"cancellation_reason": reason,
			"updated_at":          now,
		})
}

func (r *ListingRepository) Archive(ctx context.Context, id, archivedBy string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND archived_at IS NULL", id).
		Updates(map[string]any{
			"archived_at": now,
			"archived_by": archivedBy,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *ListingRepository) Unarchive(ctx context.Context, id string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND archived_at IS NOT NULL", id).
		Updates(map[string]any{
			"archived_at": nil,
			"archived_by": nil,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *ListingRepository) UpdateDraftFields(ctx context.Context, id string, patch map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND status IN ?", id, []domain.ListingStatus{domain.ListingDraft, domain.ListingPaused}).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// ReserveQuantity decrements available_quantity in a single statement
// so concurrent requests can never drive it negative. The listing must
// be published and accepting transactions.
func (r *ListingRepository) ReserveQuantity(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND status = ? AND cancelled_at IS NULL AND archived_at IS NULL AND available_quantity >= ?",
			id, domain.ListingPublished, qty).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientQuantity
	}
	return nil
}

// RestoreQuantity gives reserved quantity back after a rejection,
// cancellation or completed return.
func (r *ListingRepository) RestoreQuantity(ctx context.Context, id string, qty int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ?", id).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", qty)).Error
}

// MarkFlagged flips the flag state and reports whether this call was
// the one that flipped it (the listing's first active flag).
func (r *ListingRepository) MarkFlagged(ctx context.Context, id string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ? AND is_flagged = ?", id, false).
		Updates(map[string]any{
			"is_flagged": true,
			"flagged_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ListingRepository) ClearFlagged(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_flagged": false,
			"flagged_at": nil,
		}).Error
}
