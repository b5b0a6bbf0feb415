package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	nano := time.Now().UnixNano()
	user := &model.User{
		Username:     fmt.Sprintf("operator_%d", nano%100000),
		Email:        fmt.Sprintf("op_%d@example.com", nano),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Role:         "operator",
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// TestTopic 创建测试主题
func TestTopic(t *testing.T, db *gorm.DB, name string) *model.Topic {
	t.Helper()

	topic := &model.Topic{
		Name:     name,
		IsActive: true,
	}
	if err := db.Create(topic).Error; err != nil {
		t.Fatalf("Failed to create test topic: %v", err)
	}

	return topic
}

// TestReview 创建测试评价，默认 pending 状态、未分类
func TestReview(t *testing.T, db *gorm.DB, opts ...func(*model.Review)) *model.Review {
	t.Helper()

	review := &model.Review{
		Source:           "playstore",
		ReviewText:       fmt.Sprintf("Test review text %d", time.Now().UnixNano()%100000),
		FdbDate:          time.Now(),
		ProcessingStatus: model.StatusPending,
		ResolutionStatus: model.ResolutionUnresolved,
	}

	for _, opt := range opts {
		opt(review)
	}

	if err := db.Create(review).Error; err != nil {
		t.Fatalf("Failed to create test review: %v", err)
	}

	return review
}

// WithText 设置评价文本
func WithText(text string) func(*model.Review) {
	return func(r *model.Review) {
		r.ReviewText = text
	}
}

// WithSource 设置来源渠道
func WithSource(source string) func(*model.Review) {
	return func(r *model.Review) {
		r.Source = source
	}
}

// WithState 设置州
func WithState(state string) func(*model.Review) {
	return func(r *model.Review) {
		r.State = state
	}
}

// WithStatus 设置处理状态
func WithStatus(status string) func(*model.Review) {
	return func(r *model.Review) {
		r.ProcessingStatus = status
	}
}

// WithFdbDate 设置反馈日期
func WithFdbDate(date time.Time) func(*model.Review) {
	return func(r *model.Review) {
		r.FdbDate = date
	}
}

// WithClassification 写入完整的分类结果（completed 行）
func WithClassification(sentiment string, topicID int64, priority string, score int) func(*model.Review) {
	return func(r *model.Review) {
		r.ProcessingStatus = model.StatusCompleted
		r.Sentiment = sentiment
		r.TopicID = &topicID
		r.Priority = priority
		r.PriorityScore = score
		r.Summary = "classified summary"
	}
}

// TestNotification 创建测试通知
func TestNotification(t *testing.T, db *gorm.DB, opts ...func(*model.Notification)) *model.Notification {
	t.Helper()

	notification := &model.Notification{
		Type:        "escalation",
		Title:       fmt.Sprintf("Test notification %d", time.Now().UnixNano()%100000),
		Description: "test description",
		Priority:    3,
	}

	for _, opt := range opts {
		opt(notification)
	}

	if err := db.Create(notification).Error; err != nil {
		t.Fatalf("Failed to create test notification: %v", err)
	}

	return notification
}

// WithNotificationType 设置通知类型
func WithNotificationType(notifType string) func(*model.Notification) {
	return func(n *model.Notification) {
		n.Type = notifType
	}
}

// WithSnoozed 设置打盹到给定时间
func WithSnoozed(until time.Time) func(*model.Notification) {
	return func(n *model.Notification) {
		n.IsSnoozed = true
		n.SnoozedUntil = &until
	}
}
