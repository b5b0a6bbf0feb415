package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/pkg/queue"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

// Processor 队列任务处理器：消费单条评价的分类任务
// 批量管道之外的实时入口（运营手工录入）走这条路径
type Processor struct {
	reviewRepo *repository.ReviewRepository
	runner     *BatchRunner
}

// NewProcessor 创建任务处理器
func NewProcessor(reviewRepo *repository.ReviewRepository, runner *BatchRunner) *Processor {
	return &Processor{
		reviewRepo: reviewRepo,
		runner:     runner,
	}
}

// Process 处理单条评价分类任务
func (p *Processor) Process(ctx context.Context, msg *queue.ReviewMessage) error {
	review, err := p.reviewRepo.GetByID(msg.RowID)
	if err != nil {
		return fmt.Errorf("failed to get review %d: %w", msg.RowID, err)
	}

	// 批量管道可能已经抢先处理了这行
	switch review.ProcessingStatus {
	case model.StatusCompleted, model.StatusProcessing:
		log.Printf("Row %d already %s, skipping", review.RowID, review.ProcessingStatus)
		return nil
	}
	if review.ReviewText == "" {
		log.Printf("Row %d has empty text, skipping", review.RowID)
		return nil
	}

	if !p.runner.processRow(ctx, review) {
		return fmt.Errorf("classification failed for row %d", review.RowID)
	}

	log.Printf("Row %d classified via queue", review.RowID)
	return nil
}
