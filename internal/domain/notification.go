package domain

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotifExchangeRequest           NotificationType = "exchange_request"
	NotifExchangeConfirmed         NotificationType = "exchange_confirmed"
	NotifExchangeRejected          NotificationType = "exchange_rejected"
	NotifExchangePickedUp          NotificationType = "exchange_picked_up"
	NotifExchangeReturnInitiated   NotificationType = "exchange_return_initiated"
	NotifExchangeCompleted         NotificationType = "exchange_completed"
	NotifExchangeExtensionRequest  NotificationType = "exchange_extension_request"
	NotifExchangeExtensionApproved NotificationType = "exchange_extension_approved"
	NotifExchangeExtensionRejected NotificationType = "exchange_extension_rejected"
	NotifExchangeCancelled         NotificationType = "exchange_cancelled"
	NotifExchangeRequestCancelled  NotificationType = "exchange_request_cancelled"
	NotifExchangeFlagged           NotificationType = "exchange_flagged"
	NotifExchangeFlagResolved      NotificationType = "exchange_flag_resolved"
	NotifExchangeReminder          NotificationType = "exchange_reminder"
	NotifExchangeOverdue           NotificationType = "exchange_overdue"
)

type ActionResponse string

const (
	ActionConfirmed ActionResponse = "confirmed"
	ActionRejected  ActionResponse = "rejected"
	ActionApproved  ActionResponse = "approved"
	ActionDeclined  ActionResponse = "declined"
	ActionAccepted  ActionResponse = "accepted"
)

// SubjectKind names the entity a notification is about.
type SubjectKind string

const (
	SubjectTransaction SubjectKind = "transaction"
	SubjectListing     SubjectKind = "listing"
	SubjectEvent       SubjectKind = "event"
	SubjectDocument    SubjectKind = "document"
	SubjectCheckIn     SubjectKind = "check_in"
)

// SubjectRef is the tagged-union view over the notification's
// polymorphic foreign-key columns, so callers never have to guess
// which column is populated.
type SubjectRef struct {
	Kind SubjectKind
	ID   string
}

// Notification is a persisted in-app notification. At most one row
// exists per (subject entity, type, recipient) triple; the dispatch
// engine enforces this with a lookup before insert, backed by a unique
// index per subject column. The listing index is partial, scoped to
// rows without a transaction, because transaction notifications carry
// the listing as a secondary reference and two transactions on the
// same listing may produce the same (type, recipient) pair.
type Notification struct {
	ID          string `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    string `json:"tenant_id" gorm:"type:uuid;index;not null"`
	RecipientID string `json:"recipient_id" gorm:"type:uuid;index:idx_notifications_recipient;uniqueIndex:idx_notif_tx_type_recipient,priority:3;uniqueIndex:idx_notif_listing_type_recipient,priority:3;not null"`

	Type    NotificationType `json:"type" gorm:"type:varchar(40);uniqueIndex:idx_notif_tx_type_recipient,priority:2;uniqueIndex:idx_notif_listing_type_recipient,priority:2;not null"`
	Title   string           `json:"title" gorm:"not null"`
	Message string           `json:"message,omitempty" gorm:"type:text"`

	IsRead         bool            `json:"is_read" gorm:"not null;default:false;index:idx_notifications_recipient"`
	IsArchived     bool            `json:"is_archived" gorm:"not null;default:false"`
	ActionRequired bool            `json:"action_required" gorm:"not null;default:false"`
	ActionTaken    bool            `json:"action_taken" gorm:"not null;default:false"`
	ActionResponse *ActionResponse `json:"action_response,omitempty" gorm:"type:varchar(16)"`

	ExchangeTransactionID *string `json:"exchange_transaction_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_notif_tx_type_recipient,priority:1"`
	ExchangeListingID     *string `json:"exchange_listing_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_notif_listing_type_recipient,priority:1,where:exchange_transaction_id IS NULL"`
	EventID               *string `json:"event_id,omitempty" gorm:"type:uuid"`
	DocumentID            *string `json:"document_id,omitempty" gorm:"type:uuid"`
	CheckInID             *string `json:"check_in_id,omitempty" gorm:"type:uuid"`

	ActorID   *string         `json:"actor_id,omitempty" gorm:"type:uuid"`
	ActionURL string          `json:"action_url,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

func (Notification) TableName() string { return "notifications" }

// Subject returns the populated subject reference, if any. The
// transaction column wins when both transaction and listing are set,
// since transaction notifications also carry the listing for display.
func (n *Notification) Subject() (SubjectRef, bool) {
	switch {
	case n.ExchangeTransactionID != nil:
		return SubjectRef{Kind: SubjectTransaction, ID: *n.ExchangeTransactionID}, true
	case n.ExchangeListingID != nil:
		return SubjectRef{Kind: SubjectListing, ID: *n.ExchangeListingID}, true
	case n.EventID != nil:
		return SubjectRef{Kind: SubjectEvent, ID: *n.EventID}, true
	case n.DocumentID != nil:
		return SubjectRef{Kind: SubjectDocument, ID: *n.DocumentID}, true
	case n.CheckInID != nil:
		return SubjectRef{Kind: SubjectCheckIn, ID: *n.CheckInID}, true
	}
	return SubjectRef{}, false
}

// MarkAsRead marks the notification read with a timestamp.
func (n *Notification) MarkAsRead() {
	n.IsRead = true
	now := time.Now()
	n.ReadAt = &now
}
