package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/queue"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var ErrEmptyReviewText = errors.New("评价内容不能为空")

// IngestService 单条评价接入：落库 pending 并投递到分类队列
type IngestService struct {
	reviewRepo *repository.ReviewRepository
	queue      *queue.Queue
}

func NewIngestService(reviewRepo *repository.ReviewRepository, q *queue.Queue) *IngestService {
	return &IngestService{
		reviewRepo: reviewRepo,
		queue:      q,
	}
}

func (s *IngestService) Create(ctx context.Context, req *dto.CreateReviewRequest) (*dto.CreateReviewResponse, error) {
	if req.ReviewText == "" {
		return nil, ErrEmptyReviewText
	}

	fdbDate := time.Now()
	if req.FdbDate != "" {
		if t, err := time.Parse(time.RFC3339, req.FdbDate); err == nil {
			fdbDate = t
		} else if t, err := time.Parse("2006-01-02", req.FdbDate); err == nil {
			fdbDate = t
		}
	}

	review := &model.Review{
		Source:           req.Source,
		ReviewText:       req.ReviewText,
		FdbDate:          fdbDate,
		State:            req.State,
		Region:           req.Region,
		ProcessingStatus: model.StatusPending,
		ResolutionStatus: model.ResolutionUnresolved,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	// 投递失败不影响落库，行还会被下一轮批量处理捞走
	if s.queue != nil {
		msg := &queue.ReviewMessage{RowID: review.RowID, Source: review.Source}
		if err := s.queue.Push(ctx, msg); err != nil {
			log.Printf("Failed to enqueue review %d: %v", review.RowID, err)
		}
	}

	return &dto.CreateReviewResponse{RowID: review.RowID}, nil
}
