package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/repository"
	"github.com/revpulse/feedback_go_server/internal/worker"
)

// PipelineHandler 批量处理管道的运营控制面
type PipelineHandler struct {
	orchestrator *worker.Orchestrator
	reviewRepo   *repository.ReviewRepository
}

func NewPipelineHandler(orchestrator *worker.Orchestrator, reviewRepo *repository.ReviewRepository) *PipelineHandler {
	return &PipelineHandler{
		orchestrator: orchestrator,
		reviewRepo:   reviewRepo,
	}
}

// Start 启动一次批量处理运行
// POST /api/v1/admin/pipeline/start
func (h *PipelineHandler) Start(c *gin.Context) {
	var req dto.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	state, err := h.orchestrator.Start(req.Concurrency, req.BatchSize)
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrRunInProgress):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "批量处理已启动", &dto.StartRunResponse{
		RunID:        state.RunID,
		Concurrency:  state.Concurrency,
		BatchSize:    state.BatchSize,
		PendingCount: state.PendingCount,
	})
}

// Stop 请求停止当前运行，在途批次会继续完成
// POST /api/v1/admin/pipeline/stop
func (h *PipelineHandler) Stop(c *gin.Context) {
	if err := h.orchestrator.Stop(); err != nil {
		switch {
		case errors.Is(err, worker.ErrNotRunning):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "停止请求已受理", nil)
}

// Status 当前运行状态快照
// GET /api/v1/admin/pipeline/status
func (h *PipelineHandler) Status(c *gin.Context) {
	state := h.orchestrator.Status()
	response.Success(c, toRunStatusResponse(state))
}

// PendingCount 刷新待处理数量估算
// POST /api/v1/admin/pipeline/pending-count
func (h *PipelineHandler) PendingCount(c *gin.Context) {
	count, err := h.orchestrator.PendingCount()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, &dto.PendingCountResponse{PendingCount: count})
}

// ClearLogs 清空运行日志
// POST /api/v1/admin/pipeline/logs/clear
func (h *PipelineHandler) ClearLogs(c *gin.Context) {
	h.orchestrator.ClearLog()
	response.SuccessWithMessage(c, "日志已清空", nil)
}

// ResetFailed 把失败行重置为待处理，供下一次运行重试
// POST /api/v1/admin/pipeline/reset-failed
func (h *PipelineHandler) ResetFailed(c *gin.Context) {
	count, err := h.reviewRepo.ResetFailed()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, &dto.ResetFailedResponse{ResetCount: count})
}

func toRunStatusResponse(state worker.RunState) *dto.RunStatusResponse {
	resp := &dto.RunStatusResponse{
		Running:        state.Running,
		RunID:          state.RunID,
		TotalSucceeded: state.TotalSucceeded,
		TotalFailed:    state.TotalFailed,
		PendingCount:   state.PendingCount,
		Progress:       state.Progress,
		BatchNumber:    state.BatchNumber,
		Exhausted:      state.Exhausted,
		Logs:           state.Logs,
	}
	if resp.Logs == nil {
		resp.Logs = []string{}
	}
	if !state.StartedAt.IsZero() {
		resp.StartedAt = state.StartedAt.Format(time.RFC3339)
	}
	return resp
}
