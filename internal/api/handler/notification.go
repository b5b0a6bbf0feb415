package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List 通知列表
// GET /api/v1/notifications?unread_only=true&limit=50
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly := c.Query("unread_only") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notificationService.List(unreadOnly, limit)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, gin.H{"notifications": notifications})
}

// UnreadCount 未读数量
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, &dto.UnreadCountResponse{Count: count})
}

// MarkRead 标记已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通知 ID")
		return
	}

	if err := h.notificationService.MarkRead(id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已标记已读", nil)
}

// MarkAllRead 全部标记已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	affected, err := h.notificationService.MarkAllRead()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, gin.H{"affected": affected})
}

// Snooze 稍后提醒
// PUT /api/v1/notifications/:id/snooze
func (h *NotificationHandler) Snooze(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通知 ID")
		return
	}

	var req dto.SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.notificationService.Snooze(id, req.Until); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidSnoozeTime):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已设置稍后提醒", nil)
}
