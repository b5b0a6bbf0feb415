package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var (
	ErrRunInProgress = errors.New("已有批量处理正在运行")
	ErrNotRunning    = errors.New("当前没有运行中的批量处理")
)

// Orchestrator 批量处理调度器，单进程内唯一持有 nextOffset
// 每轮并发派发 concurrency 个批次，整轮结算后才派发下一轮
type Orchestrator struct {
	runner     *BatchRunner
	reviewRepo *repository.ReviewRepository
	cfg        *config.Config

	// 每个已结算批次和收尾时回调一次状态快照（推送 pub/sub 和 WebSocket）
	onProgress func(s RunState)

	mu       sync.Mutex
	state    RunState
	running  bool
	stopping bool
}

// NewOrchestrator 创建调度器
func NewOrchestrator(
	runner *BatchRunner,
	reviewRepo *repository.ReviewRepository,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		runner:     runner,
		reviewRepo: reviewRepo,
		cfg:        cfg,
	}
}

// OnProgress 注册进度回调，必须在 Start 之前调用
func (o *Orchestrator) OnProgress(fn func(s RunState)) {
	o.onProgress = fn
}

// Start 启动一次运行；已在运行中则报错
func (o *Orchestrator) Start(concurrency, batchSize int) (RunState, error) {
	concurrency = o.clampConcurrency(concurrency)
	batchSize = o.runner.clampSize(batchSize)

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return RunState{}, ErrRunInProgress
	}
	o.running = true
	o.stopping = false
	o.mu.Unlock()

	pending, err := o.reviewRepo.CountPending()
	if err != nil {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		return RunState{}, err
	}

	runID := uuid.New().String()
	state := newRunState(runID, pending, concurrency, batchSize, time.Now())

	o.mu.Lock()
	o.state = state
	o.mu.Unlock()

	log.Printf("Pipeline run %s started: concurrency=%d batchSize=%d pending=%d",
		runID, concurrency, batchSize, pending)
	go o.run()

	return state, nil
}

// Stop 请求停止：当前轮次的在途批次照常完成，不再派发新轮次
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return ErrNotRunning
	}
	o.stopping = true
	o.state = reduceLog(o.state, "stop requested, finishing in-flight batches", time.Now(), o.cfg.Pipeline.LogCapacity)
	return nil
}

// Status 返回当前状态快照
func (o *Orchestrator) Status() RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ClearLog 清空运行日志
func (o *Orchestrator) ClearLog() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Logs = nil
}

// PendingCount 重新采样待处理行数
func (o *Orchestrator) PendingCount() (int64, error) {
	return o.reviewRepo.CountPending()
}

type batchResult struct {
	offset  int
	outcome *BatchOutcome
	err     error
}

// run 调度主循环：构造轮次、并发执行、结算、直到耗尽或停止
func (o *Orchestrator) run() {
	logCap := o.cfg.Pipeline.LogCapacity
	backoff := time.Duration(o.cfg.Pipeline.RetryBackoffMs) * time.Millisecond
	nextOffset := 0
	retryCounts := make(map[int]int)
	var retryQueue []int
	aborted := false

	for {
		o.mu.Lock()
		state := o.state
		stopping := o.stopping
		o.mu.Unlock()

		if state.Exhausted || stopping || aborted {
			break
		}

		// 本轮派发的偏移：优先重试失败窗口，剩余名额派发新窗口
		offsets := make([]int, 0, state.Concurrency)
		for len(offsets) < state.Concurrency && len(retryQueue) > 0 {
			offsets = append(offsets, retryQueue[0])
			retryQueue = retryQueue[1:]
		}
		for len(offsets) < state.Concurrency {
			offsets = append(offsets, nextOffset)
			nextOffset += state.BatchSize // 派发即推进，轮内并发不会撞偏移
		}

		results := o.dispatchRound(offsets, state.BatchSize)

		roundHadError := false
		o.mu.Lock()
		for _, res := range results {
			if res.err != nil {
				roundHadError = true
				o.state = reduceBatchError(o.state, res.offset, res.err, time.Now(), logCap)
				retryCounts[res.offset]++
				if retryCounts[res.offset] <= o.cfg.Pipeline.MaxWindowRetries {
					retryQueue = append(retryQueue, res.offset)
				} else {
					// 重试额度耗尽说明存储持续不可用，终止本次运行而不是继续派发新窗口
					aborted = true
					o.state = reduceLog(o.state,
						"ALARM: batch window retries exhausted, run aborted, operator attention required", time.Now(), logCap)
					log.Printf("Pipeline run %s: offset %d failed %d times, aborting run",
						o.state.RunID, res.offset, retryCounts[res.offset])
				}
				continue
			}
			o.state = reduceOutcome(o.state, res.outcome, time.Now(), logCap)
		}
		snapshot := o.state
		o.mu.Unlock()

		o.publish(snapshot)

		// 失败轮次之间退避，存储故障时不空转
		if roundHadError && !aborted {
			time.Sleep(backoff)
		}
	}

	o.mu.Lock()
	o.state = reduceFinished(o.state, time.Now(), logCap)
	o.running = false
	o.stopping = false
	snapshot := o.state
	o.mu.Unlock()

	log.Printf("Pipeline run %s completed: %d succeeded, %d failed",
		snapshot.RunID, snapshot.TotalSucceeded, snapshot.TotalFailed)
	o.publish(snapshot)
}

// dispatchRound 并发执行一轮批次并等待全部结算
func (o *Orchestrator) dispatchRound(offsets []int, batchSize int) []batchResult {
	results := make([]batchResult, len(offsets))
	var wg sync.WaitGroup
	for i, offset := range offsets {
		wg.Add(1)
		go func(i, offset int) {
			defer wg.Done()
			outcome, err := o.runner.RunBatch(context.Background(), offset, batchSize)
			results[i] = batchResult{offset: offset, outcome: outcome, err: err}
		}(i, offset)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) publish(s RunState) {
	if o.onProgress != nil {
		o.onProgress(s)
	}
}

func (o *Orchestrator) clampConcurrency(concurrency int) int {
	if concurrency <= 0 {
		return o.cfg.Pipeline.DefaultConcurrency
	}
	if concurrency > o.cfg.Pipeline.MaxConcurrency {
		return o.cfg.Pipeline.MaxConcurrency
	}
	return concurrency
}
