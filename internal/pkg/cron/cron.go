package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

type Service struct {
	reviewRepo       *repository.ReviewRepository
	notificationRepo *repository.NotificationRepository
	cfg              *config.AlertsConfig
	stopChan         chan struct{}
}

func NewService(
	reviewRepo *repository.ReviewRepository,
	notificationRepo *repository.NotificationRepository,
	cfg *config.AlertsConfig,
) *Service {
	return &Service{
		reviewRepo:       reviewRepo,
		notificationRepo: notificationRepo,
		cfg:              cfg,
		stopChan:         make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runAlertScan()
	go s.runMaintenance()
	log.Println("Cron service started (alert scan + maintenance sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) scanInterval() time.Duration {
	minutes := s.cfg.ScanIntervalMinutes
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

// runAlertScan 周期性扫描新增的负面和高优先级评价
func (s *Service) runAlertScan() {
	ticker := time.NewTicker(s.scanInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.ScanOnce()
		}
	}
}

// runMaintenance 每分钟执行打盹到期唤醒和卡死行回收
func (s *Service) runMaintenance() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.MaintainOnce()
		}
	}
}

// ScanOnce 执行一轮告警扫描（手动触发和测试也走这里）
func (s *Service) ScanOnce() {
	since := time.Now().Add(-s.scanInterval())
	s.scanEscalations(since)
	s.scanNegativeSpike(since)
}

// scanEscalations 新增高优先级未解决评价转成升级通知
func (s *Service) scanEscalations(since time.Time) {
	reviews, err := s.reviewRepo.HighPriorityUnresolvedSince(since, 20)
	if err != nil {
		log.Printf("Alert scan: failed to query high priority reviews: %v", err)
		return
	}

	for _, review := range reviews {
		exists, err := s.notificationRepo.ExistsSimilarSince("escalation", review.TopicID, since)
		if err != nil {
			log.Printf("Alert scan: dedup query failed: %v", err)
			continue
		}
		if exists {
			continue
		}

		topicName := "general"
		if review.Topic != nil {
			topicName = review.Topic.Name
		}
		notification := &model.Notification{
			Type:        "escalation",
			Title:       fmt.Sprintf("High priority %s issue needs attention", topicName),
			Description: review.Summary,
			Priority:    5,
			Source:      review.Source,
			TopicID:     review.TopicID,
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			log.Printf("Alert scan: failed to create escalation notification: %v", err)
		}
	}
}

// scanNegativeSpike 窗口内负面占比超阈值时产生尖刺告警
func (s *Service) scanNegativeSpike(since time.Time) {
	negative, err := s.reviewRepo.CountNegativeSince(since)
	if err != nil {
		log.Printf("Alert scan: failed to count negative reviews: %v", err)
		return
	}
	total, err := s.reviewRepo.CountClassifiedSince(since)
	if err != nil {
		log.Printf("Alert scan: failed to count classified reviews: %v", err)
		return
	}

	threshold := s.cfg.SpikeThreshold
	if threshold <= 0 {
		threshold = 10
	}
	ratio := s.cfg.NegativeRatio
	if ratio <= 0 {
		ratio = 0.5
	}

	if total == 0 || negative < int64(threshold) {
		return
	}
	if float64(negative)/float64(total) < ratio {
		return
	}

	exists, err := s.notificationRepo.ExistsSimilarSince("spike", nil, since)
	if err != nil || exists {
		return
	}

	notification := &model.Notification{
		Type:        "spike",
		Title:       "Negative sentiment spike detected",
		Description: fmt.Sprintf("%d of %d recent reviews are negative", negative, total),
		Priority:    5,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		log.Printf("Alert scan: failed to create spike notification: %v", err)
	}
}

// MaintainOnce 执行一轮维护：唤醒到期打盹、回收卡死的 processing 行
func (s *Service) MaintainOnce() {
	woken, err := s.notificationRepo.WakeExpiredSnoozes()
	if err != nil {
		log.Printf("Maintenance: failed to wake snoozed notifications: %v", err)
	} else if woken > 0 {
		log.Printf("Maintenance: woke %d snoozed notifications", woken)
	}

	staleMins := s.cfg.StaleProcessingMins
	if staleMins <= 0 {
		staleMins = 30
	}
	swept, err := s.reviewRepo.SweepStaleProcessing(time.Duration(staleMins) * time.Minute)
	if err != nil {
		log.Printf("Maintenance: failed to sweep stale processing rows: %v", err)
	} else if swept > 0 {
		log.Printf("Maintenance: reset %d stale processing rows to pending", swept)
	}
}
