package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"neighborly/internal/domain"
)

type FlagRepository struct {
	db *gorm.DB
}

func NewFlagRepository(db *gorm.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// Create inserts one flag row. Each user gets one flag per listing;
// a second insert by the same flagger reports ErrDuplicate off the
// unique index.
func (r *FlagRepository) Create(ctx context.Context, f *domain.Flag) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Create(f).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *FlagRepository) ExistsForUser(ctx context.Context, listingID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Flag{}).
		Where("listing_id = ? AND flagged_by = ?", listingID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *FlagRepository) ListByListing(ctx context.Context, listingID string) ([]domain.Flag, error) {
	var out []domain.Flag
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// DeleteByListing clears every flag on the listing in one statement.
func (r *FlagRepository) DeleteByListing(ctx context.Context, listingID string) error {
	return r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Delete(&domain.Flag{}).Error
}
