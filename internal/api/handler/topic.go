package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/service"
)

type TopicHandler struct {
	topicService  *service.TopicService
	reviewService *service.ReviewService
}

func NewTopicHandler(topicService *service.TopicService, reviewService *service.ReviewService) *TopicHandler {
	return &TopicHandler{
		topicService:  topicService,
		reviewService: reviewService,
	}
}

// List 主题列表
// GET /api/v1/topics
func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.topicService.List()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, gin.H{"topics": topics})
}

// Analytics 各主题聚合指标
// GET /api/v1/topics/analytics
func (h *TopicHandler) Analytics(c *gin.Context) {
	analytics, err := h.reviewService.TopicAnalytics()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, gin.H{"topics": analytics})
}

// Reviews 某主题下的评价
// GET /api/v1/topics/:id/reviews
func (h *TopicHandler) Reviews(c *gin.Context) {
	topicID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的主题 ID")
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

	items, total, err := h.reviewService.TopicReviews(topicID, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTopicNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// TopState 某主题提及最多的州
// GET /api/v1/topics/:id/top-state
func (h *TopicHandler) TopState(c *gin.Context) {
	topicID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的主题 ID")
		return
	}

	top, err := h.reviewService.TopicTopState(topicID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTopicNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"top_state": top})
}
