package domain

import "time"

type Role string

const (
	RoleResident  Role = "resident"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User is the resident directory row. Account and session management
// are handled elsewhere; the exchange core reads users only for
// display names in notification text.
type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"type:uuid;index;not null"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;default:'resident'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// DisplayName is the name shown in notification messages.
func (u *User) DisplayName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
