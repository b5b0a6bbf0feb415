package handler

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/api/middleware"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/repository"
	"github.com/revpulse/feedback_go_server/internal/service"
	"github.com/revpulse/feedback_go_server/internal/testutil"
)

func setupImportHandler(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.SetupTestDB(t)
	user := testutil.TestUser(t, db)

	importService := service.NewImportService(
		repository.NewReviewRepository(db),
		repository.NewImportRepository(db),
		nil,
		&config.ImportConfig{MaxSize: 1 << 20},
	)
	h := NewImportHandler(importService)

	router := gin.New()
	// 测试里直接注入用户身份，跳过 JWT
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
	})
	router.POST("/admin/import", h.Upload)
	router.GET("/admin/import/history", h.History)
	return router
}

func uploadCSV(t *testing.T, router *gin.Engine, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/admin/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportHandler_Upload(t *testing.T) {
	router := setupImportHandler(t)

	csv := "source,review_text,state\nplaystore,delivery took ten days,Lagos\nnps,love it,Abuja\n"
	w := uploadCSV(t, router, "reviews.csv", csv)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["row_count"])
	assert.NotEmpty(t, data["import_id"])

	w2 := performRequest(router, "GET", "/admin/import/history", nil)
	resp = parseResponse(t, w2)
	require.Equal(t, response.CodeSuccess, resp.Code)
}

func TestImportHandler_Upload_NoFile(t *testing.T) {
	router := setupImportHandler(t)

	w := performRequest(router, "POST", "/admin/import", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestImportHandler_Upload_BadHeader(t *testing.T) {
	router := setupImportHandler(t)

	w := uploadCSV(t, router, "bad.csv", "source,comment\nnps,hello\n")
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}
