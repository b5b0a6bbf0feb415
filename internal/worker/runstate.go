package worker

import (
	"fmt"
	"time"
)

// RunState 一次运行的完整状态快照
// 只由调度循环通过 reducer 推进，纯值语义，不含任何 I/O
type RunState struct {
	RunID          string
	Running        bool
	Concurrency    int
	BatchSize      int
	PendingCount   int64 // 运行开始前采样一次，之后不再修正
	TotalSucceeded int64
	TotalFailed    int64
	BatchNumber    int
	Exhausted      bool
	Progress       float64
	StartedAt      time.Time
	Logs           []string // 最新在前，容量有界
}

// newRunState 新运行的初始状态
func newRunState(runID string, pending int64, concurrency, batchSize int, now time.Time) RunState {
	return RunState{
		RunID:        runID,
		Running:      true,
		Concurrency:  concurrency,
		BatchSize:    batchSize,
		PendingCount: pending,
		StartedAt:    now,
	}
}

// reduceOutcome 把一个已结算批次的结果并入状态
func reduceOutcome(s RunState, o *BatchOutcome, now time.Time, logCap int) RunState {
	s.TotalSucceeded += int64(o.Succeeded)
	s.TotalFailed += int64(o.Failed)
	s.BatchNumber++
	if !o.Continuation {
		s.Exhausted = true
	}
	s.Progress = computeProgress(s)

	line := fmt.Sprintf("batch #%d offset=%d size=%d returned=%d ok=%d failed=%d elapsed=%dms throughput=%.1f rows/s",
		s.BatchNumber, o.Offset, o.RequestedSize, o.RowsReturned, o.Succeeded, o.Failed, o.ElapsedMs, o.Throughput)
	return reduceLog(s, line, now, logCap)
}

// reduceBatchError 记录批次级失败，不推进任何计数
func reduceBatchError(s RunState, offset int, err error, now time.Time, logCap int) RunState {
	line := fmt.Sprintf("batch at offset=%d failed: %v", offset, err)
	return reduceLog(s, line, now, logCap)
}

// reduceLog 最新在前地追加一条带时间戳的日志并截断到容量
func reduceLog(s RunState, line string, now time.Time, logCap int) RunState {
	stamped := fmt.Sprintf("[%s] %s", now.Format("15:04:05"), line)
	logs := make([]string, 0, len(s.Logs)+1)
	logs = append(logs, stamped)
	logs = append(logs, s.Logs...)
	if logCap > 0 && len(logs) > logCap {
		logs = logs[:logCap]
	}
	s.Logs = logs
	return s
}

// reduceFinished 运行收尾：总是以完成态落地，失败行留给重置流程
func reduceFinished(s RunState, now time.Time, logCap int) RunState {
	s.Running = false
	if s.Exhausted {
		s.Progress = 100
	}
	line := fmt.Sprintf("run %s completed: %d succeeded, %d failed, %d batches, elapsed %s",
		s.RunID, s.TotalSucceeded, s.TotalFailed, s.BatchNumber, now.Sub(s.StartedAt).Round(time.Millisecond))
	return reduceLog(s, line, now, logCap)
}

// computeProgress 进度百分比，分母取已知积压和已处理数的较大者防止除零和超百
func computeProgress(s RunState) float64 {
	processed := s.TotalSucceeded + s.TotalFailed
	denom := s.PendingCount
	if processed > denom {
		denom = processed
	}
	if denom == 0 {
		return 0
	}
	p := float64(processed) / float64(denom) * 100
	if p > 100 {
		p = 100
	}
	return p
}
