package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var ErrTopicNotFound = errors.New("主题不存在")

type TopicService struct {
	topicRepo *repository.TopicRepository
}

func NewTopicService(topicRepo *repository.TopicRepository) *TopicService {
	return &TopicService{topicRepo: topicRepo}
}

func (s *TopicService) List() ([]*model.Topic, error) {
	return s.topicRepo.ListActive()
}

func (s *TopicService) Get(id int64) (*model.Topic, error) {
	topic, err := s.topicRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return topic, nil
}

// Seed 确保固定主题词表存在（服务启动时调用）
func (s *TopicService) Seed(names []string) error {
	for _, name := range names {
		if _, err := s.topicRepo.EnsureExists(name); err != nil {
			return err
		}
	}
	return nil
}
