package dto

type NotificationFilters struct {
	Type      string `form:"type"`
	IsRead    *bool  `form:"is_read"`
	IsSnoozed *bool  `form:"is_snoozed"`
	Priority  int    `form:"priority"`
}

type SnoozeRequest struct {
	Until string `json:"until" binding:"required"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
