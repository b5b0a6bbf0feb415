package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	ingestService *service.IngestService
}

func NewReviewHandler(reviewService *service.ReviewService, ingestService *service.IngestService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		ingestService: ingestService,
	}
}

// List 评价列表
// GET /api/v1/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	var filters dto.ReviewFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.reviewService.List(&filters, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 单条评价详情
// GET /api/v1/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	rowID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评价 ID")
		return
	}

	item, err := h.reviewService.Get(rowID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, item)
}

// Create 单条评价接入
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.ingestService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyReviewText):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评价已接收", resp)
}

// UpdateResolution 标记处理进展
// PUT /api/v1/reviews/:id/resolution
func (h *ReviewHandler) UpdateResolution(c *gin.Context) {
	rowID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评价 ID")
		return
	}

	var req dto.UpdateResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.reviewService.UpdateResolution(rowID, req.ResolutionStatus); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", nil)
}
