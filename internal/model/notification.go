package model

import (
	"time"
)

type Notification struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Type         string     `gorm:"size:20;not null;index" json:"type"` // escalation, spike, anomaly
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Priority     int        `gorm:"default:3;index" json:"priority"`
	Source       string     `gorm:"size:20" json:"source,omitempty"`
	TopicID      *int64     `gorm:"index" json:"topic_id,omitempty"`
	IsRead       bool       `gorm:"default:false;index" json:"is_read"`
	IsSnoozed    bool       `gorm:"default:false;index" json:"is_snoozed"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
