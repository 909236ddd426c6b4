package domain

import "time"

type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingPublished ListingStatus = "published"
	ListingPaused    ListingStatus = "paused"
	ListingCancelled ListingStatus = "cancelled"
)

type PricingType string

const (
	PricingFree          PricingType = "free"
	PricingFixed         PricingType = "fixed_price"
	PricingPayWhatYouWant PricingType = "pay_what_you_want"
)

type ItemCondition string

const (
	ConditionNew             ItemCondition = "new"
	ConditionSlightlyUsed    ItemCondition = "slightly_used"
	ConditionUsed            ItemCondition = "used"
	ConditionSlightlyDamaged ItemCondition = "slightly_damaged"
	ConditionMaintenance     ItemCondition = "maintenance"
)

type VisibilityScope string

const (
	VisibilityCommunity    VisibilityScope = "community"
	VisibilityNeighborhood VisibilityScope = "neighborhood"
)

// Listing is an item or service offered by a resident for borrowing.
// available_quantity is only decremented by quantity reservations and
// restored on rejection/cancellation/return; it never goes negative.
type Listing struct {
	ID         string `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID   string `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CreatedBy  string `json:"created_by" gorm:"type:uuid;not null"`
	CategoryID string `json:"category_id" gorm:"type:uuid;not null"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	Status ListingStatus `json:"status" gorm:"type:varchar(16);not null;default:'draft'"`

	PricingType PricingType    `json:"pricing_type" gorm:"type:varchar(24);not null;default:'free'"`
	Price       *float64       `json:"price,omitempty"`
	Condition   *ItemCondition `json:"condition,omitempty" gorm:"type:varchar(24)"`

	AvailableQuantity int `json:"available_quantity" gorm:"not null;default:1"`

	VisibilityScope VisibilityScope `json:"visibility_scope" gorm:"type:varchar(16);not null;default:'community'"`

	IsFlagged bool       `json:"is_flagged" gorm:"not null;default:false"`
	FlaggedAt *time.Time `json:"flagged_at,omitempty"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	ArchivedBy *string    `json:"archived_by,omitempty" gorm:"type:uuid"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Neighborhoods []ListingNeighborhood `json:"neighborhoods,omitempty" gorm:"foreignKey:ListingID"`
}

func (Listing) TableName() string { return "exchange_listings" }

// ListingNeighborhood scopes a neighborhood-visible listing to one neighborhood.
type ListingNeighborhood struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID       string    `json:"tenant_id" gorm:"type:uuid;not null"`
	ListingID      string    `json:"listing_id" gorm:"type:uuid;index;not null"`
	NeighborhoodID string    `json:"neighborhood_id" gorm:"type:uuid;not null"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ListingNeighborhood) TableName() string { return "exchange_listing_neighborhoods" }

// Category groups listings inside one tenant.
type Category struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    string    `json:"tenant_id" gorm:"type:uuid;index;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "exchange_categories" }
