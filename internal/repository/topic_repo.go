package repository

import (
	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
)

type TopicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) Create(topic *model.Topic) error {
	return r.db.Create(topic).Error
}

func (r *TopicRepository) GetByID(id int64) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.Where("id = ?", id).First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) GetByName(name string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.Where("name = ?", name).First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) ListActive() ([]*model.Topic, error) {
	var topics []*model.Topic
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&topics).Error
	return topics, err
}

// EnsureExists 按名称取主题，不存在则创建（服务启动时播种固定词表）
func (r *TopicRepository) EnsureExists(name string) (*model.Topic, error) {
	topic, err := r.GetByName(name)
	if err == nil {
		return topic, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	topic = &model.Topic{Name: name, IsActive: true}
	if err := r.db.Create(topic).Error; err != nil {
		return nil, err
	}
	return topic, nil
}
