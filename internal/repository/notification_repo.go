package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

// List 列出未删除的通知，未打盹的在前，按优先级和时间排序
func (r *NotificationRepository) List(unreadOnly bool, limit int) ([]*model.Notification, error) {
	query := r.db.Model(&model.Notification{}).Where("is_snoozed = ?", false)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var notifications []*model.Notification
	err := query.Order("priority DESC, created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) CountUnread() (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("is_read = ? AND is_snoozed = ?", false, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id int64) error {
	result := r.db.Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead() (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) Snooze(id int64, until time.Time) error {
	result := r.db.Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_snoozed":    true,
			"snoozed_until": until,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WakeExpiredSnoozes 唤醒打盹到期的通知，返回唤醒数量
func (r *NotificationRepository) WakeExpiredSnoozes() (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("is_snoozed = ? AND snoozed_until <= ?", true, time.Now()).
		Updates(map[string]interface{}{
			"is_snoozed":    false,
			"snoozed_until": nil,
		})
	return result.RowsAffected, result.Error
}

// ExistsSimilarSince 给定时间内是否已有同类型同主题的通知（告警去重）
func (r *NotificationRepository) ExistsSimilarSince(notifType string, topicID *int64, since time.Time) (bool, error) {
	query := r.db.Model(&model.Notification{}).
		Where("type = ? AND created_at >= ?", notifType, since)
	if topicID != nil {
		query = query.Where("topic_id = ?", *topicID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}
