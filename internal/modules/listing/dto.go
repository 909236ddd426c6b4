package listing

type createRequest struct {
	CategoryID      string   `json:"category_id" binding:"required,uuid"`
	Title           string   `json:"title" binding:"required,max=200"`
	Description     string   `json:"description" binding:"max=5000"`
	PricingType     string   `json:"pricing_type" binding:"required,oneof=free fixed_price pay_what_you_want"`
	Price           *float64 `json:"price"`
	Condition       *string  `json:"condition" binding:"omitempty,oneof=new slightly_used used slightly_damaged maintenance"`
	Quantity        int      `json:"quantity" binding:"required,min=1"`
	VisibilityScope string   `json:"visibility_scope" binding:"omitempty,oneof=community neighborhood"`
	NeighborhoodIDs []string `json:"neighborhood_ids" binding:"omitempty,dive,uuid"`
}

type updateRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	CategoryID  *string  `json:"category_id" binding:"omitempty,uuid"`
	PricingType *string  `json:"pricing_type" binding:"omitempty,oneof=free fixed_price pay_what_you_want"`
	Price       *float64 `json:"price"`
	Condition   *string  `json:"condition" binding:"omitempty,oneof=new slightly_used used slightly_damaged maintenance"`
	Quantity    *int     `json:"quantity" binding:"omitempty,min=1"`
}

type cancelListingRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}
