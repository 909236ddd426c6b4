package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neighborly/internal/domain"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SlugsByIDs resolves tenant slugs in one batched query. IDs that do
// not resolve are simply absent from the map.
func (r *TenantRepository) SlugsByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	var rows []domain.Tenant
	err := r.db.WithContext(ctx).
		Select("id", "slug").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, t := range rows {
		out[t.ID] = t.Slug
	}
	return out, nil
}
