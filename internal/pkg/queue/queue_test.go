package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestNewQueue(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "review_queue")

	assert.NotNil(t, q)
	assert.Equal(t, "review_queue", q.queueName)
	assert.Equal(t, client, q.client)
}

func TestQueue_Push(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "review_queue")
	ctx := context.Background()

	t.Run("push single message", func(t *testing.T) {
		msg := &ReviewMessage{
			RowID:  1001,
			Source: "playstore",
		}

		err := q.Push(ctx, msg)
		require.NoError(t, err)

		length, err := q.Length(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), length)
	})

	t.Run("push multiple messages", func(t *testing.T) {
		q2 := NewQueue(client, "review_queue2")

		for i := 0; i < 5; i++ {
			err := q2.Push(ctx, &ReviewMessage{RowID: int64(i)})
			require.NoError(t, err)
		}

		length, err := q2.Length(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), length)
	})
}

func TestQueue_Pop(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("pop preserves message fields", func(t *testing.T) {
		q := NewQueue(client, "test_pop_queue")

		err := q.Push(ctx, &ReviewMessage{RowID: 42, Source: "whatsapp"})
		require.NoError(t, err)

		result, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, int64(42), result.RowID)
		assert.Equal(t, "whatsapp", result.Source)
	})

	t.Run("pop FIFO order", func(t *testing.T) {
		q := NewQueue(client, "test_fifo_queue")

		for i := 1; i <= 3; i++ {
			err := q.Push(ctx, &ReviewMessage{RowID: int64(i)})
			require.NoError(t, err)
		}

		for i := 1; i <= 3; i++ {
			result, err := q.Pop(ctx, time.Second)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, int64(i), result.RowID)
		}
	})

	t.Run("pop from empty queue times out", func(t *testing.T) {
		q := NewQueue(client, "test_empty_queue")

		result, err := q.Pop(ctx, 10*time.Millisecond)

		// miniredis doesn't support BRPop timeout properly, so check for nil or error
		if err == nil {
			assert.Nil(t, result)
		}
	})
}

func TestQueue_Length(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q := NewQueue(client, "test_length_ops")

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)

	for i := 0; i < 3; i++ {
		err := q.Push(ctx, &ReviewMessage{RowID: int64(i)})
		require.NoError(t, err)
	}

	length, err = q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)

	_, err = q.Pop(ctx, time.Second)
	require.NoError(t, err)

	length, err = q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}
