package exchange

import "time"

type createRequest struct {
	ListingID          string     `json:"listing_id" binding:"required,uuid"`
	Quantity           int        `json:"quantity" binding:"required,min=1"`
	ProposedPickupDate *time.Time `json:"proposed_pickup_date"`
	ProposedReturnDate *time.Time `json:"proposed_return_date"`
	Message            string     `json:"message" binding:"max=2000"`
}

type acceptRequest struct {
	ConfirmedPickupDate *time.Time `json:"confirmed_pickup_date"`
	ExpectedReturnDate  *time.Time `json:"expected_return_date"`
	LenderMessage       string     `json:"lender_message" binding:"max=2000"`
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

type returnRequest struct {
	Condition      string `json:"condition" binding:"omitempty,oneof=good minor_wear damaged broken"`
	Notes          string `json:"notes" binding:"max=2000"`
	DamagePhotoURL string `json:"damage_photo_url" binding:"omitempty,url"`
}

type extensionRequest struct {
	NewDate time.Time `json:"new_date" binding:"required"`
	Message string    `json:"message" binding:"max=2000"`
}

type resolveExtensionRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}
