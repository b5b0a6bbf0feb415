package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/testutil"
)

func TestNotificationRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewNotificationRepository(db)
	notification := &model.Notification{
		Type:        "spike",
		Title:       "Negative spike in Delivery",
		Description: "negative mentions doubled in the last hour",
		Priority:    5,
	}

	err := repo.Create(notification)
	require.NoError(t, err)
	assert.NotZero(t, notification.ID)
}

func TestNotificationRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewNotificationRepository(db)
	testutil.TestNotification(t, db)
	high := testutil.TestNotification(t, db, func(n *model.Notification) { n.Priority = 5 })
	snoozed := testutil.TestNotification(t, db, testutil.WithSnoozed(time.Now().Add(time.Hour)))
	read := testutil.TestNotification(t, db, func(n *model.Notification) { n.IsRead = true })

	all, err := repo.List(false, 50)
	require.NoError(t, err)
	require.Len(t, all, 3) // snoozed one hidden
	assert.Equal(t, high.ID, all[0].ID)
	for _, n := range all {
		assert.NotEqual(t, snoozed.ID, n.ID)
	}

	unread, err := repo.List(true, 50)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	for _, n := range unread {
		assert.NotEqual(t, read.ID, n.ID)
	}
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewNotificationRepository(db)
	notification := testutil.TestNotification(t, db)

	require.NoError(t, repo.MarkRead(notification.ID))

	count, err := repo.CountUnread()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = repo.MarkRead(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewNotificationRepository(db)
	testutil.TestNotification(t, db)
	testutil.TestNotification(t, db)

	marked, err := repo.MarkAllRead()
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)
}

func TestNotificationRepository_SnoozeAndWake(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewNotificationRepository(db)
	notification := testutil.TestNotification(t, db)

	require.NoError(t, repo.Snooze(notification.ID, time.Now().Add(-time.Minute)))

	visible, err := repo.List(false, 50)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// the snooze already expired, the sweep wakes it back up
	woken, err := repo.WakeExpiredSnoozes()
	require.NoError(t, err)
	assert.Equal(t, int64(1), woken)

	visible, err = repo.List(false, 50)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestNotificationRepository_ExistsSimilarSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewNotificationRepository(db)
	topicID := int64(7)
	testutil.TestNotification(t, db, func(n *model.Notification) {
		n.Type = "spike"
		n.TopicID = &topicID
	})

	since := time.Now().Add(-time.Hour)

	exists, err := repo.ExistsSimilarSince("spike", &topicID, since)
	require.NoError(t, err)
	assert.True(t, exists)

	other := int64(8)
	exists, err = repo.ExistsSimilarSince("spike", &other, since)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsSimilarSince("escalation", nil, since)
	require.NoError(t, err)
	assert.False(t, exists)
}
