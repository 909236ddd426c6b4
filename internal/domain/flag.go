package domain

import "time"

// Flag is one resident's report against a listing. A listing can carry
// several flags, one per distinct flagger; moderation clears them all
// at once.
type Flag struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"type:uuid;index;not null"`
	ListingID string    `json:"listing_id" gorm:"type:uuid;uniqueIndex:idx_exchange_flags_listing_flagger,priority:1;not null"`
	FlaggedBy string    `json:"flagged_by" gorm:"type:uuid;uniqueIndex:idx_exchange_flags_listing_flagger,priority:2;not null"`
	Reason    string    `json:"reason" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Flag) TableName() string { return "exchange_flags" }
