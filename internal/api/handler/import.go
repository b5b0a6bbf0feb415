package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/internal/api/middleware"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/service"
)

type ImportHandler struct {
	importService *service.ImportService
}

func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// Upload CSV 批量导入
// POST /api/v1/admin/import  (multipart form, file 字段)
func (h *ImportHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传 CSV 文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	resp, err := h.importService.ImportCSV(userID, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportTooLarge):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrImportEmpty):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrImportBadHeader):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "导入完成", resp)
}

// History 当前用户的导入记录
// GET /api/v1/admin/import/history
func (h *ImportHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	jobs, err := h.importService.History(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, gin.H{"imports": jobs})
}
