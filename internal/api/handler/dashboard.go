package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/service"
)

type DashboardHandler struct {
	reviewService *service.ReviewService
}

func NewDashboardHandler(reviewService *service.ReviewService) *DashboardHandler {
	return &DashboardHandler{
		reviewService: reviewService,
	}
}

// Metrics 总览指标
// GET /api/v1/dashboard/metrics
func (h *DashboardHandler) Metrics(c *gin.Context) {
	metrics, err := h.reviewService.DashboardMetrics()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, metrics)
}

// SentimentTrend 按日情感趋势
// GET /api/v1/dashboard/sentiment-trend?days=30
func (h *DashboardHandler) SentimentTrend(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	points, err := h.reviewService.SentimentTrend(days)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, gin.H{"points": points})
}

// RegionSentiment 各州情感，最差在前
// GET /api/v1/dashboard/region-sentiment
func (h *DashboardHandler) RegionSentiment(c *gin.Context) {
	regions, err := h.reviewService.RegionSentiments()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, gin.H{"regions": regions})
}
