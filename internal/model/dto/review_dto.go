package dto

// ReviewFilters 评价列表过滤条件
type ReviewFilters struct {
	Sentiment        string `form:"sentiment"`
	Priority         string `form:"priority"`
	Source           string `form:"source"`
	TopicID          int64  `form:"topic_id"`
	ResolutionStatus string `form:"resolution_status"`
	Status           string `form:"status"`
	State            string `form:"state"`
	Search           string `form:"search"`
	StartDate        string `form:"start_date"`
	EndDate          string `form:"end_date"`
}

type ReviewListItem struct {
	RowID            int64  `json:"row_id"`
	Source           string `json:"source"`
	ReviewText       string `json:"review_text"`
	FdbDate          string `json:"fdb_date"`
	State            string `json:"state,omitempty"`
	Region           string `json:"region,omitempty"`
	Sentiment        string `json:"sentiment"`
	TopicID          *int64 `json:"topic_id,omitempty"`
	TopicName        string `json:"topic_name,omitempty"`
	Priority         string `json:"priority"`
	PriorityScore    int    `json:"priority_score"`
	Summary          string `json:"summary"`
	ResolutionStatus string `json:"resolution_status"`
}

type CreateReviewRequest struct {
	Source     string `json:"source" binding:"required"`
	ReviewText string `json:"review_text" binding:"required"`
	State      string `json:"state"`
	Region     string `json:"region"`
	FdbDate    string `json:"fdb_date"`
}

type CreateReviewResponse struct {
	RowID int64 `json:"row_id"`
}

type UpdateResolutionRequest struct {
	ResolutionStatus string `json:"resolution_status" binding:"required,oneof=resolved unresolved in_progress"`
}
