package handler

import (
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/repository"
	"github.com/revpulse/feedback_go_server/internal/service"
	"github.com/revpulse/feedback_go_server/internal/testutil"
)

func setupReviewHandler(t *testing.T) (*ReviewHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	reviewRepo := repository.NewReviewRepository(db)
	topicRepo := repository.NewTopicRepository(db)

	reviewService := service.NewReviewService(reviewRepo, topicRepo)
	ingestService := service.NewIngestService(reviewRepo, nil)
	return NewReviewHandler(reviewService, ingestService), db
}

func reviewRouter(h *ReviewHandler) *gin.Engine {
	router := gin.New()
	router.GET("/reviews", h.List)
	router.POST("/reviews", h.Create)
	router.GET("/reviews/:id", h.Get)
	router.PUT("/reviews/:id/resolution", h.UpdateResolution)
	return router
}

func TestReviewHandler_List(t *testing.T) {
	h, db := setupReviewHandler(t)
	router := reviewRouter(h)

	topic := testutil.TestTopic(t, db, "Delivery")
	testutil.TestReview(t, db, testutil.WithClassification("negative", topic.ID, "high", 5))
	testutil.TestReview(t, db, testutil.WithClassification("positive", topic.ID, "low", 1))
	testutil.TestReview(t, db) // pending 行不出现在默认列表

	w := performRequest(router, "GET", "/reviews", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total"])
}

func TestReviewHandler_List_SentimentFilter(t *testing.T) {
	h, db := setupReviewHandler(t)
	router := reviewRouter(h)

	topic := testutil.TestTopic(t, db, "Payment")
	testutil.TestReview(t, db, testutil.WithClassification("negative", topic.ID, "high", 5))
	testutil.TestReview(t, db, testutil.WithClassification("positive", topic.ID, "low", 1))

	w := performRequest(router, "GET", "/reviews?sentiment=negative", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["total"])
}

func TestReviewHandler_Get_NotFound(t *testing.T) {
	h, _ := setupReviewHandler(t)
	router := reviewRouter(h)

	w := performRequest(router, "GET", "/reviews/9999", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)

	w = performRequest(router, "GET", "/reviews/not-a-number", nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestReviewHandler_Create(t *testing.T) {
	h, db := setupReviewHandler(t)
	router := reviewRouter(h)

	req := dto.CreateReviewRequest{
		Source:     "whatsapp",
		ReviewText: "checkout keeps failing",
		State:      "Lagos",
	}
	w := performRequest(router, "POST", "/reviews", req)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var count int64
	db.Model(&model.Review{}).Where("processing_status = ?", model.StatusPending).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestReviewHandler_Create_MissingText(t *testing.T) {
	h, _ := setupReviewHandler(t)
	router := reviewRouter(h)

	w := performRequest(router, "POST", "/reviews", map[string]string{"source": "nps"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestReviewHandler_UpdateResolution(t *testing.T) {
	h, db := setupReviewHandler(t)
	router := reviewRouter(h)

	topic := testutil.TestTopic(t, db, "Pricing")
	review := testutil.TestReview(t, db, testutil.WithClassification("negative", topic.ID, "high", 5))

	req := dto.UpdateResolutionRequest{ResolutionStatus: model.ResolutionResolved}
	w := performRequest(router, "PUT", "/reviews/"+itoa(review.RowID)+"/resolution", req)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var got model.Review
	require.NoError(t, db.First(&got, review.RowID).Error)
	assert.Equal(t, model.ResolutionResolved, got.ResolutionStatus)
}

func TestReviewHandler_UpdateResolution_InvalidStatus(t *testing.T) {
	h, db := setupReviewHandler(t)
	router := reviewRouter(h)

	topic := testutil.TestTopic(t, db, "Pricing")
	review := testutil.TestReview(t, db, testutil.WithClassification("negative", topic.ID, "high", 5))

	w := performRequest(router, "PUT", "/reviews/"+itoa(review.RowID)+"/resolution",
		map[string]string{"resolution_status": "done"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
