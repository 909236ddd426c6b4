package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neighborly/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DisplayName returns the user's display name, or an empty string when
// the user cannot be resolved. Notification text degrades gracefully
// without a name.
func (r *UserRepository) DisplayName(ctx context.Context, id string) string {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.DisplayName()
}
