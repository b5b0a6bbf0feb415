package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var ErrReviewNotFound = errors.New("评价不存在")

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	topicRepo  *repository.TopicRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, topicRepo *repository.TopicRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		topicRepo:  topicRepo,
	}
}

// List 评价列表，按优先级分和反馈时间倒序
// 默认只返回已分类完成的行，传 status 参数可以查看其它状态
func (s *ReviewService) List(filters *dto.ReviewFilters, page, pageSize int) ([]*dto.ReviewListItem, int64, error) {
	if filters == nil {
		filters = &dto.ReviewFilters{}
	}
	if filters.Status == "" {
		filters.Status = model.StatusCompleted
	}
	reviews, total, err := s.reviewRepo.List(filters, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ReviewListItem, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, toReviewListItem(r))
	}
	return items, total, nil
}

// Get 单条评价详情
func (s *ReviewService) Get(rowID int64) (*dto.ReviewListItem, error) {
	review, err := s.reviewRepo.GetByID(rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return toReviewListItem(review), nil
}

// UpdateResolution 运营人员标记处理进展
func (s *ReviewService) UpdateResolution(rowID int64, status string) error {
	if err := s.reviewRepo.UpdateResolution(rowID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

// DashboardMetrics 总览指标汇总
func (s *ReviewService) DashboardMetrics() (*dto.DashboardMetrics, error) {
	total, err := s.reviewRepo.CountTotal()
	if err != nil {
		return nil, err
	}

	highPriority, err := s.reviewRepo.CountHighPriority()
	if err != nil {
		return nil, err
	}

	avgScore, err := s.reviewRepo.AvgPriorityScore()
	if err != nil {
		return nil, err
	}

	dist, err := s.reviewRepo.SentimentDistribution()
	if err != nil {
		return nil, err
	}

	topTopic, err := s.reviewRepo.MostMentionedTopic()
	if err != nil {
		return nil, err
	}

	worstRegion := ""
	regions, err := s.reviewRepo.RegionSentiments()
	if err != nil {
		return nil, err
	}
	if len(regions) > 0 {
		worstRegion = regions[0].State
	}

	return &dto.DashboardMetrics{
		TotalReviews:          total,
		HighPriorityCount:     highPriority,
		AvgPriorityScore:      avgScore,
		MostMentionedTopic:    topTopic,
		WorstSentimentRegion:  worstRegion,
		SentimentDistribution: *dist,
	}, nil
}

// TopicAnalytics 各主题的量级、情感和优先级聚合
func (s *ReviewService) TopicAnalytics() ([]*dto.TopicAnalytics, error) {
	return s.reviewRepo.TopicAnalytics()
}

// RegionSentiments 各州情感，最差在前
func (s *ReviewService) RegionSentiments() ([]*dto.RegionSentiment, error) {
	return s.reviewRepo.RegionSentiments()
}

// SentimentTrend 最近 N 天按日情感趋势
func (s *ReviewService) SentimentTrend(days int) ([]*dto.SentimentTrendPoint, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	return s.reviewRepo.SentimentTrend(days)
}

// TopicReviews 某主题下的评价列表
func (s *ReviewService) TopicReviews(topicID int64, page, pageSize int) ([]*dto.ReviewListItem, int64, error) {
	if _, err := s.topicRepo.GetByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTopicNotFound
		}
		return nil, 0, err
	}
	filters := &dto.ReviewFilters{TopicID: topicID}
	return s.List(filters, page, pageSize)
}

// TopicTopState 某主题提及最多的州
func (s *ReviewService) TopicTopState(topicID int64) (*dto.RegionSentiment, error) {
	if _, err := s.topicRepo.GetByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	regions, err := s.reviewRepo.TopicRegionCounts(topicID)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, nil
	}
	return regions[0], nil
}

func toReviewListItem(r *model.Review) *dto.ReviewListItem {
	item := &dto.ReviewListItem{
		RowID:            r.RowID,
		Source:           r.Source,
		ReviewText:       r.ReviewText,
		FdbDate:          r.FdbDate.Format(time.RFC3339),
		State:            r.State,
		Region:           r.Region,
		Sentiment:        r.Sentiment,
		TopicID:          r.TopicID,
		Priority:         r.Priority,
		PriorityScore:    r.PriorityScore,
		Summary:          r.Summary,
		ResolutionStatus: r.ResolutionStatus,
	}
	if r.Topic != nil {
		item.TopicName = r.Topic.Name
	}
	return item
}
