package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Ask 针对某主题提问
// POST /api/v1/chat/ask
func (h *ChatHandler) Ask(c *gin.Context) {
	var req dto.ChatAskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.chatService.Ask(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTopicNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrChatNotConfigured):
			response.Error(c, response.CodeServerError, err.Error())
		case errors.Is(err, service.ErrChatUnavailable):
			response.Error(c, response.CodeServerError, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
