package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/classifier"
	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/response"
	"github.com/revpulse/feedback_go_server/internal/repository"
	"github.com/revpulse/feedback_go_server/internal/testutil"
	"github.com/revpulse/feedback_go_server/internal/worker"
)

func setupPipelineHandler(t *testing.T) (*PipelineHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	reviewRepo := repository.NewReviewRepository(db)
	topicRepo := repository.NewTopicRepository(db)

	cfg := &config.Config{
		Pipeline: config.PipelineConfig{
			DefaultBatchSize:   10,
			MinBatchSize:       1,
			MaxBatchSize:       10000,
			DefaultConcurrency: 1,
			MaxConcurrency:     10,
			ChunkSize:          5,
			LogCapacity:        100,
			MaxWindowRetries:   3,
			RetryBackoffMs:     1,
		},
		Classifier: config.ClassifierConfig{Provider: "keyword", TimeoutSeconds: 5},
	}

	clf, err := classifier.New(&cfg.Classifier)
	require.NoError(t, err)

	runner := worker.NewBatchRunner(reviewRepo, topicRepo, clf, cfg)
	orchestrator := worker.NewOrchestrator(runner, reviewRepo, cfg)
	return NewPipelineHandler(orchestrator, reviewRepo), db
}

func pipelineRouter(h *PipelineHandler) *gin.Engine {
	router := gin.New()
	router.POST("/start", h.Start)
	router.POST("/stop", h.Stop)
	router.GET("/status", h.Status)
	router.POST("/pending-count", h.PendingCount)
	router.POST("/logs/clear", h.ClearLogs)
	router.POST("/reset-failed", h.ResetFailed)
	return router
}

func waitForPipelineIdle(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		w := performRequest(router, "GET", "/status", nil)
		resp := parseResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		if data["running"] == false {
			return data
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("pipeline did not finish in time")
	return nil
}

func TestPipelineHandler_StartAndStatus(t *testing.T) {
	h, db := setupPipelineHandler(t)
	router := pipelineRouter(h)

	for i := 0; i < 12; i++ {
		testutil.TestReview(t, db)
	}

	w := performRequest(router, "POST", "/start", dto.StartRunRequest{Concurrency: 1, BatchSize: 5})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["run_id"])
	assert.Equal(t, float64(12), data["pending_count"])

	status := waitForPipelineIdle(t, router)
	assert.Equal(t, true, status["exhausted"])
	assert.Equal(t, float64(100), status["progress"])
	assert.Equal(t, float64(12), status["total_succeeded"])

	var completed int64
	db.Model(&model.Review{}).Where("processing_status = ?", model.StatusCompleted).Count(&completed)
	assert.Equal(t, int64(12), completed)
}

func TestPipelineHandler_Stop_NotRunning(t *testing.T) {
	h, _ := setupPipelineHandler(t)
	router := pipelineRouter(h)

	w := performRequest(router, "POST", "/stop", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeRunConflict, resp.Code)
}

func TestPipelineHandler_PendingCount(t *testing.T) {
	h, db := setupPipelineHandler(t)
	router := pipelineRouter(h)

	testutil.TestReview(t, db)
	testutil.TestReview(t, db, testutil.WithStatus(model.StatusFailed))

	w := performRequest(router, "POST", "/pending-count", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	// failed 行不计入待处理
	assert.Equal(t, float64(1), data["pending_count"])
}

func TestPipelineHandler_ResetFailed(t *testing.T) {
	h, db := setupPipelineHandler(t)
	router := pipelineRouter(h)

	testutil.TestReview(t, db, testutil.WithStatus(model.StatusFailed))
	testutil.TestReview(t, db, testutil.WithStatus(model.StatusFailed))

	w := performRequest(router, "POST", "/reset-failed", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["reset_count"])
}

func TestPipelineHandler_ClearLogs(t *testing.T) {
	h, _ := setupPipelineHandler(t)
	router := pipelineRouter(h)

	w := performRequest(router, "POST", "/logs/clear", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	w = performRequest(router, "GET", "/status", nil)
	resp = parseResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	logs, ok := data["logs"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, logs)
}
