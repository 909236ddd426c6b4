package domain

import "time"

type TransactionStatus string

const (
	TransactionRequested TransactionStatus = "requested"
	TransactionRejected  TransactionStatus = "rejected"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionPickedUp  TransactionStatus = "picked_up"
	TransactionReturned  TransactionStatus = "returned"
	TransactionCompleted TransactionStatus = "completed"
)

type ReturnCondition string

const (
	ReturnGood      ReturnCondition = "good"
	ReturnMinorWear ReturnCondition = "minor_wear"
	ReturnDamaged   ReturnCondition = "damaged"
	ReturnBroken    ReturnCondition = "broken"
)

// Transaction is one borrower's claim against a listing, tracked
// from request through completion. Terminal statuses are rejected and
// completed. Cancellation is orthogonal: CancelledAt/CancellationReason
// are layered on top of the pre-cancel status instead of reusing the
// rejected status, because the two outcomes address different audiences.
type Transaction struct {
	ID         string `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID   string `json:"tenant_id" gorm:"type:uuid;index;not null"`
	ListingID  string `json:"listing_id" gorm:"type:uuid;index;not null"`
	BorrowerID string `json:"borrower_id" gorm:"type:uuid;index;not null"`
	LenderID   string `json:"lender_id" gorm:"type:uuid;index;not null"`

	Quantity int               `json:"quantity" gorm:"not null"`
	Status   TransactionStatus `json:"status" gorm:"type:varchar(16);index;not null;default:'requested'"`

	ProposedPickupDate  *time.Time `json:"proposed_pickup_date,omitempty"`
	ProposedReturnDate  *time.Time `json:"proposed_return_date,omitempty"`
	ConfirmedPickupDate *time.Time `json:"confirmed_pickup_date,omitempty"`
	ExpectedReturnDate  *time.Time `json:"expected_return_date,omitempty"`
	ActualPickupDate    *time.Time `json:"actual_pickup_date,omitempty"`
	ActualReturnDate    *time.Time `json:"actual_return_date,omitempty"`

	BorrowerMessage string `json:"borrower_message,omitempty" gorm:"type:text"`
	LenderMessage   string `json:"lender_message,omitempty" gorm:"type:text"`
	RejectionReason string `json:"rejection_reason,omitempty" gorm:"type:text"`

	ExtensionRequested bool       `json:"extension_requested" gorm:"not null;default:false"`
	ExtensionNewDate   *time.Time `json:"extension_new_date,omitempty"`
	ExtensionMessage   string     `json:"extension_message,omitempty" gorm:"type:text"`

	ReturnCondition      *ReturnCondition `json:"return_condition,omitempty" gorm:"type:varchar(16)"`
	ReturnNotes          string           `json:"return_notes,omitempty" gorm:"type:text"`
	ReturnDamagePhotoURL string           `json:"return_damage_photo_url,omitempty"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (Transaction) TableName() string { return "exchange_transactions" }

// Active reports whether the transaction still holds reserved quantity.
func (t *Transaction) Active() bool {
	if t.CancelledAt != nil {
		return false
	}
	switch t.Status {
	case TransactionRequested, TransactionConfirmed, TransactionPickedUp, TransactionReturned:
		return true
	}
	return false
}
