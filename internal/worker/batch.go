package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/classifier"
	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

// BatchOutcome 单个批次的处理结果
type BatchOutcome struct {
	Offset        int
	RequestedSize int
	RowsReturned  int
	Succeeded     int
	Failed        int
	ElapsedMs     int64
	Throughput    float64 // rows/s
	Continuation  bool    // 整片取满说明后面可能还有
}

// BatchRunner 批量分类执行器：认领一片待处理行、逐行调用分类器、按行回写
type BatchRunner struct {
	reviewRepo *repository.ReviewRepository
	topicRepo  *repository.TopicRepository
	clf        classifier.Classifier
	cfg        *config.Config

	// 同进程内并发批次的认领互斥；跨进程安全需要数据库层面的 SKIP LOCKED
	claimMu sync.Mutex

	topicMu  sync.Mutex
	topicIDs map[string]int64
}

// NewBatchRunner 创建批量分类执行器
func NewBatchRunner(
	reviewRepo *repository.ReviewRepository,
	topicRepo *repository.TopicRepository,
	clf classifier.Classifier,
	cfg *config.Config,
) *BatchRunner {
	return &BatchRunner{
		reviewRepo: reviewRepo,
		topicRepo:  topicRepo,
		clf:        clf,
		cfg:        cfg,
		topicIDs:   make(map[string]int64),
	}
}

// RunBatch 处理一个批次
// offset 由调度方单调分配，仅用于日志和结果标识；实际选行走原子认领
// 认领失败对整批致命并向上返回；单行分类失败只影响该行
func (r *BatchRunner) RunBatch(ctx context.Context, offset, size int) (*BatchOutcome, error) {
	size = r.clampSize(size)
	start := time.Now()

	r.claimMu.Lock()
	rows, err := r.reviewRepo.ClaimBatch(size)
	r.claimMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("claim batch at offset %d: %w", offset, err)
	}

	outcome := &BatchOutcome{
		Offset:        offset,
		RequestedSize: size,
		RowsReturned:  len(rows),
		Continuation:  len(rows) == size,
	}
	if len(rows) == 0 {
		outcome.ElapsedMs = time.Since(start).Milliseconds()
		return outcome, nil
	}

	succeeded, failed := r.processRows(ctx, rows)
	outcome.Succeeded = succeeded
	outcome.Failed = failed
	outcome.ElapsedMs = time.Since(start).Milliseconds()
	if elapsed := time.Since(start).Seconds(); elapsed > 0 {
		outcome.Throughput = float64(len(rows)) / elapsed
	}
	return outcome, nil
}

// processRows 按块有界并发处理认领到的行
func (r *BatchRunner) processRows(ctx context.Context, rows []*model.Review) (int, int) {
	chunkSize := r.cfg.Pipeline.ChunkSize
	var succeeded, failed int
	var mu sync.Mutex

	for begin := 0; begin < len(rows); begin += chunkSize {
		end := begin + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		var wg sync.WaitGroup
		for _, row := range rows[begin:end] {
			wg.Add(1)
			go func(row *model.Review) {
				defer wg.Done()
				ok := r.processRow(ctx, row)
				mu.Lock()
				if ok {
					succeeded++
				} else {
					failed++
				}
				mu.Unlock()
			}(row)
		}
		wg.Wait()
	}
	return succeeded, failed
}

// processRow 分类单行并回写，返回是否成功
func (r *BatchRunner) processRow(ctx context.Context, row *model.Review) bool {
	callCtx := ctx
	if timeout := r.cfg.Classifier.TimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	result, err := r.clf.Classify(callCtx, row.ReviewText)
	if err == nil {
		err = classifier.Validate(result)
	}
	if err != nil {
		log.Printf("Row %d classification failed: %v", row.RowID, err)
		if markErr := r.reviewRepo.MarkFailed(row.RowID); markErr != nil {
			log.Printf("Failed to mark row %d as failed: %v", row.RowID, markErr)
		}
		return false
	}

	topicID, err := r.resolveTopicID(result.Topic)
	if err != nil {
		log.Printf("Row %d topic lookup failed: %v", row.RowID, err)
		r.reviewRepo.MarkFailed(row.RowID)
		return false
	}

	score := classifier.PriorityScore(result.Priority)
	if err := r.reviewRepo.MarkCompleted(row.RowID, result.Sentiment, topicID, result.Priority, score, result.Summary); err != nil {
		log.Printf("Failed to write classification for row %d: %v", row.RowID, err)
		r.reviewRepo.MarkFailed(row.RowID)
		return false
	}
	return true
}

// resolveTopicID 主题名转 ID，按名缓存
func (r *BatchRunner) resolveTopicID(name string) (int64, error) {
	r.topicMu.Lock()
	defer r.topicMu.Unlock()

	if id, ok := r.topicIDs[name]; ok {
		return id, nil
	}
	topic, err := r.topicRepo.EnsureExists(name)
	if err != nil {
		return 0, err
	}
	r.topicIDs[name] = topic.ID
	return topic.ID, nil
}

func (r *BatchRunner) clampSize(size int) int {
	if size <= 0 {
		return r.cfg.Pipeline.DefaultBatchSize
	}
	if size < r.cfg.Pipeline.MinBatchSize {
		return r.cfg.Pipeline.MinBatchSize
	}
	if size > r.cfg.Pipeline.MaxBatchSize {
		return r.cfg.Pipeline.MaxBatchSize
	}
	return size
}
