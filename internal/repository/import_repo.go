package repository

import (
	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
)

type ImportRepository struct {
	db *gorm.DB
}

func NewImportRepository(db *gorm.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

func (r *ImportRepository) Create(job *model.ImportJob) error {
	return r.db.Create(job).Error
}

func (r *ImportRepository) GetByImportID(importID string) (*model.ImportJob, error) {
	var job model.ImportJob
	err := r.db.Where("import_id = ?", importID).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ImportRepository) ListByUser(userID int64, limit int) ([]*model.ImportJob, error) {
	var jobs []*model.ImportJob
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
