package domain

import "time"

// Tenant is one residential community. Tenant management lives in a
// separate system; the exchange core only reads id and slug to build
// action URLs.
type Tenant struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }
