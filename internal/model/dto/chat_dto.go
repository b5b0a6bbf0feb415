package dto

type ChatAskRequest struct {
	TopicID  int64  `json:"topic_id" binding:"required"`
	Question string `json:"question" binding:"required"`
}

type ChatAskResponse struct {
	Answer string `json:"answer"`
}
