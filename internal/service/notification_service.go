package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var (
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrInvalidSnoozeTime    = errors.New("稍后提醒时间无效")
)

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List 通知列表，高优先级在前，已 snooze 的隐藏
func (s *NotificationService) List(unreadOnly bool, limit int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notificationRepo.List(unreadOnly, limit)
}

func (s *NotificationService) UnreadCount() (int64, error) {
	return s.notificationRepo.CountUnread()
}

func (s *NotificationService) MarkRead(id int64) error {
	if err := s.notificationRepo.MarkRead(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead() (int64, error) {
	return s.notificationRepo.MarkAllRead()
}

// Snooze 推迟提醒到给定时刻，时间必须在未来
func (s *NotificationService) Snooze(id int64, until string) error {
	t, err := time.Parse(time.RFC3339, until)
	if err != nil {
		return ErrInvalidSnoozeTime
	}
	if !t.After(time.Now()) {
		return ErrInvalidSnoozeTime
	}
	if err := s.notificationRepo.Snooze(id, t); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}
