package model

import (
	"time"
)

type ImportJob struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ImportID   string    `gorm:"size:64;uniqueIndex;not null" json:"import_id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	FileName   string    `gorm:"size:255" json:"file_name"`
	RowCount   int       `json:"row_count"`
	ArchiveURL string    `gorm:"size:500" json:"archive_url,omitempty"`
	Status     string    `gorm:"size:20;default:completed;index" json:"status"` // completed, failed
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}
