package model

import (
	"time"
)

// 处理状态（批量分类管道写入）
const (
	StatusUnset      = ""
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// 解决状态（运营人员人工标记）
const (
	ResolutionUnresolved = "unresolved"
	ResolutionInProgress = "in_progress"
	ResolutionResolved   = "resolved"
)

type Review struct {
	RowID            int64     `gorm:"column:row_id;primaryKey" json:"row_id"`
	Source           string    `gorm:"size:20;index" json:"source"` // playstore, nps, freshdesk, whatsapp, social
	ReviewText       string    `gorm:"type:text" json:"review_text"`
	FdbDate          time.Time `gorm:"index" json:"fdb_date"`
	State            string    `gorm:"size:50;index" json:"state,omitempty"`
	Region           string    `gorm:"size:50" json:"region,omitempty"`
	ProcessingStatus string    `gorm:"size:20;index" json:"processing_status"` // 空值或 pending, processing, completed, failed
	Sentiment        string    `gorm:"size:10" json:"sentiment,omitempty"`                     // positive, neutral, negative
	TopicID          *int64    `gorm:"index" json:"topic_id,omitempty"`
	Priority         string    `gorm:"size:10" json:"priority,omitempty"` // high, medium, low
	PriorityScore    int       `json:"priority_score,omitempty"`
	Summary          string    `gorm:"type:text" json:"summary,omitempty"`
	ResolutionStatus string    `gorm:"size:20;default:unresolved;index" json:"resolution_status"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// 关联
	Topic *Topic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// Classified 返回四个分类字段是否全部写入
// completed 行必须四项齐全，failed 行必须四项全空
func (r *Review) Classified() bool {
	return r.Sentiment != "" && r.TopicID != nil && r.Priority != "" && r.Summary != ""
}
