package worker

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/classifier"
	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/repository"
	"github.com/revpulse/feedback_go_server/internal/testutil"
)

func newTestOrchestrator(t *testing.T, db *gorm.DB, clf classifier.Classifier) *Orchestrator {
	t.Helper()
	cfg := testPipelineConfig()
	runner := newTestRunner(t, db, clf, cfg)
	return NewOrchestrator(runner, repository.NewReviewRepository(db), cfg)
}

// waitForIdle 等待运行结束
func waitForIdle(t *testing.T, o *Orchestrator) RunState {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		state := o.Status()
		if !state.Running {
			return state
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("orchestrator did not finish in time")
	return RunState{}
}

func TestOrchestrator_BacklogOf25(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	o := newTestOrchestrator(t, db, &stubClassifier{})
	seedReviews(t, db, 25)

	state, err := o.Start(1, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, state.RunID)
	assert.Equal(t, int64(25), state.PendingCount)

	final := waitForIdle(t, o)
	assert.Equal(t, int64(25), final.TotalSucceeded)
	assert.Zero(t, final.TotalFailed)
	assert.Equal(t, 3, final.BatchNumber) // 10 + 10 + 5
	assert.True(t, final.Exhausted)
	assert.Equal(t, 100.0, final.Progress)
}

func TestOrchestrator_EmptyBacklog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	o := newTestOrchestrator(t, db, &stubClassifier{})

	_, err := o.Start(1, 10)
	require.NoError(t, err)

	final := waitForIdle(t, o)
	assert.Zero(t, final.TotalSucceeded)
	assert.Zero(t, final.TotalFailed)
	assert.True(t, final.Exhausted)
}

func TestOrchestrator_ConcurrentRounds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	o := newTestOrchestrator(t, db, &stubClassifier{})
	seedReviews(t, db, 47)

	_, err := o.Start(3, 10)
	require.NoError(t, err)

	final := waitForIdle(t, o)
	assert.Equal(t, int64(47), final.TotalSucceeded)
	assert.True(t, final.Exhausted)

	// every row written exactly once
	var completed int64
	require.NoError(t, db.Model(&model.Review{}).
		Where("processing_status = ?", model.StatusCompleted).Count(&completed).Error)
	assert.Equal(t, int64(47), completed)
	var leftover int64
	require.NoError(t, db.Model(&model.Review{}).
		Where("processing_status IN ?", []string{model.StatusPending, model.StatusProcessing}).
		Count(&leftover).Error)
	assert.Zero(t, leftover)
}

func TestOrchestrator_StartWhileRunning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	release := make(chan struct{})
	stub := &stubClassifier{fn: func(call int, text string) (*classifier.Result, error) {
		<-release
		return &classifier.Result{Topic: "Delivery", Sentiment: "neutral", Priority: "low", Summary: "s"}, nil
	}}
	o := newTestOrchestrator(t, db, stub)
	seedReviews(t, db, 3)

	_, err := o.Start(1, 10)
	require.NoError(t, err)

	_, err = o.Start(1, 10)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	waitForIdle(t, o)

	// a finished run frees the slot
	_, err = o.Start(1, 10)
	require.NoError(t, err)
	waitForIdle(t, o)
}

func TestOrchestrator_Stop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	firstBatchStarted := make(chan struct{})
	var once sync.Once
	stub := &stubClassifier{fn: func(call int, text string) (*classifier.Result, error) {
		once.Do(func() { close(firstBatchStarted) })
		time.Sleep(20 * time.Millisecond)
		return &classifier.Result{Topic: "Delivery", Sentiment: "neutral", Priority: "low", Summary: "s"}, nil
	}}
	o := newTestOrchestrator(t, db, stub)
	seedReviews(t, db, 40)

	_, err := o.Start(1, 10)
	require.NoError(t, err)

	<-firstBatchStarted
	require.NoError(t, o.Stop())

	final := waitForIdle(t, o)
	// the in-flight batch finished, no new rounds were dispatched
	processed := final.TotalSucceeded + final.TotalFailed
	assert.Greater(t, processed, int64(0))
	assert.Less(t, processed, int64(40))

	err = o.Stop()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestOrchestrator_ProgressCallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	o := newTestOrchestrator(t, db, &stubClassifier{})
	seedReviews(t, db, 15)

	var mu sync.Mutex
	var snapshots []RunState
	o.OnProgress(func(s RunState) {
		mu.Lock()
		snapshots = append(snapshots, s)
		mu.Unlock()
	})

	_, err := o.Start(1, 10)
	require.NoError(t, err)
	waitForIdle(t, o)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, snapshots)
	last := snapshots[len(snapshots)-1]
	assert.False(t, last.Running)
	assert.Equal(t, int64(15), last.TotalSucceeded)
}

func TestOrchestrator_RunEndsCompletedDespiteRowFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	stub := &stubClassifier{fn: func(call int, text string) (*classifier.Result, error) {
		return nil, errors.New("model down")
	}}
	o := newTestOrchestrator(t, db, stub)
	seedReviews(t, db, 5)

	_, err := o.Start(1, 10)
	require.NoError(t, err)

	final := waitForIdle(t, o)
	assert.Equal(t, int64(5), final.TotalFailed)
	assert.Zero(t, final.TotalSucceeded)
	assert.True(t, final.Exhausted)
	assert.Contains(t, final.Logs[0], "completed")

	// failed rows stay failed until an operator resets them
	reset, err := repository.NewReviewRepository(db).ResetFailed()
	require.NoError(t, err)
	assert.Equal(t, int64(5), reset)
}

func TestOrchestrator_AbortsWhenStoreStaysDown(t *testing.T) {
	db := testutil.SetupTestDB(t)

	firstBatchStarted := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	stub := &stubClassifier{fn: func(call int, text string) (*classifier.Result, error) {
		once.Do(func() { close(firstBatchStarted) })
		<-release
		return &classifier.Result{Topic: "Delivery", Sentiment: "neutral", Priority: "low", Summary: "s"}, nil
	}}
	o := newTestOrchestrator(t, db, stub)
	seedReviews(t, db, 30)

	_, err := o.Start(1, 10)
	require.NoError(t, err)

	// first window is in flight, now the store goes away for good
	<-firstBatchStarted
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	close(release)

	final := waitForIdle(t, o)
	assert.False(t, final.Running)
	assert.Zero(t, final.TotalSucceeded)
	assert.Equal(t, int64(10), final.TotalFailed) // the window claimed before the outage

	var alarmed bool
	for _, line := range final.Logs {
		if strings.Contains(line, "ALARM") {
			alarmed = true
			break
		}
	}
	assert.True(t, alarmed, "retries ran out without raising an alarm")
	assert.Contains(t, final.Logs[0], "completed")
}

func TestOrchestrator_ClearLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	o := newTestOrchestrator(t, db, &stubClassifier{})
	seedReviews(t, db, 5)

	_, err := o.Start(1, 10)
	require.NoError(t, err)
	final := waitForIdle(t, o)
	require.NotEmpty(t, final.Logs)

	o.ClearLog()
	assert.Empty(t, o.Status().Logs)
}

func TestOrchestrator_PendingCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	o := newTestOrchestrator(t, db, &stubClassifier{})
	seedReviews(t, db, 4)

	count, err := o.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	_, err = o.Start(1, 10)
	require.NoError(t, err)
	waitForIdle(t, o)

	count, err = o.PendingCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOrchestrator_ConcurrencyClamped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	o := newTestOrchestrator(t, db, &stubClassifier{})

	state, err := o.Start(99, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, state.Concurrency) // MaxConcurrency
	waitForIdle(t, o)

	state, err = o.Start(0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Concurrency) // DefaultConcurrency
	waitForIdle(t, o)
}
