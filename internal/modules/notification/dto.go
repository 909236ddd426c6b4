package notification

import "neighborly/internal/domain"

type listQuery struct {
	Type           string `form:"type"`
	IsRead         *bool  `form:"is_read"`
	IsArchived     *bool  `form:"is_archived"`
	ActionRequired *bool  `form:"action_required"`
	ActionTaken    *bool  `form:"action_taken"`
	Limit          int    `form:"limit"`
}

type takeActionRequest struct {
	Response domain.ActionResponse `json:"response" binding:"required,oneof=confirmed rejected approved declined accepted"`
}
