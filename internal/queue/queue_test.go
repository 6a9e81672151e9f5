package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lexora/translation-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func TestQueue_PublishAndConsume(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := Config{
		Name:              "translation:tasks",
		ConsumerGroup:     "translators",
		ConsumerName:      "test-consumer",
		MaxAttempts:       5,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         1,
		MaxLen:            1000,
		EnableDLQ:         true,
	}

	q, err := New(adapter, config)
	require.NoError(t, err)

	ctx := context.Background()
	task := map[string]string{"input_text": "hello", "source_lang": "en", "target_lang": "fr"}

	_, err = q.PublishJSON(ctx, task, map[string]string{"task_id": "task-1"})
	require.NoError(t, err)

	received := make(chan bool, 1)
	handler := func(ctx context.Context, msg *Message) error {
		var data map[string]string
		err := json.Unmarshal(msg.Data, &data)
		assert.NoError(t, err)
		assert.Equal(t, "hello", data["input_text"])
		assert.Equal(t, "task-1", msg.Metadata["task_id"])
		assert.Equal(t, 0, msg.Attempts)
		received <- true
		return nil
	}

	err = q.Consume(handler)
	require.NoError(t, err)

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}

	q.Stop(time.Second)
}

func TestQueue_PublishRetry(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := Config{
		Name:              "retry:tasks",
		ConsumerGroup:     "translators",
		ConsumerName:      "test-consumer",
		MaxAttempts:       5,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         1,
	}

	q, err := New(adapter, config)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	msg := &Message{
		Data:     []byte(`{"input_text":"hello"}`),
		Metadata: map[string]string{"task_id": "task-9"},
		Attempts: 2,
	}

	_, err = q.PublishRetry(ctx, msg)
	require.NoError(t, err)

	received := make(chan *Message, 1)
	err = q.Consume(func(ctx context.Context, m *Message) error {
		received <- m
		return nil
	})
	require.NoError(t, err)

	select {
	case m := <-received:
		assert.Equal(t, 3, m.Attempts)
		assert.Equal(t, "task-9", m.Metadata["task_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("retried message not received")
	}
}

func TestQueue_ExhaustedAttemptsGoToFailedStream(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := Config{
		Name:              "dlq:tasks",
		ConsumerGroup:     "translators",
		ConsumerName:      "test-consumer",
		MaxAttempts:       2,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         1,
		EnableDLQ:         true,
	}

	q, err := New(adapter, config)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	msg := &Message{
		Data:     []byte(`{"input_text":"hello"}`),
		Metadata: map[string]string{"task_id": "task-dead"},
		Attempts: 1,
	}

	// Attempts land at MaxAttempts, so delivery goes straight to the
	// failed stream without invoking the handler.
	_, err = q.PublishRetry(ctx, msg)
	require.NoError(t, err)

	handled := make(chan struct{}, 1)
	err = q.Consume(func(ctx context.Context, m *Message) error {
		handled <- struct{}{}
		return nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		failed, err := adapter.XLen(config.FailedName())
		return err == nil && failed == 1
	}, 2*time.Second, 50*time.Millisecond)

	select {
	case <-handled:
		t.Fatal("handler should not run for an exhausted task")
	default:
	}

	stats, err := q.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.FailedMessages)
}

func TestQueue_FailedStreamKeepsMetadata(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := Config{
		Name:          "meta:tasks",
		ConsumerGroup: "translators",
		ConsumerName:  "test-consumer",
		EnableDLQ:     true,
	}

	q, err := New(adapter, config)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	q.MoveToFailed(&Message{
		ID:       "1-0",
		Data:     []byte(`{"input_text":"hello"}`),
		Metadata: map[string]string{"task_id": "task-7", "user_id": "user-1"},
		Attempts: 5,
	})

	msgs, err := adapter.XRead(config.FailedName(), "0", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "true", msgs[0].Values["failed"])
	assert.Equal(t, "task-7", msgs[0].Values["meta_task_id"])
	assert.Equal(t, "meta:tasks", msgs[0].Values["original_queue"])
}

func TestQueue_Stats(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := Config{
		Name:              "stats:tasks",
		ConsumerGroup:     "translators",
		ConsumerName:      "test-consumer",
		MaxAttempts:       5,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         1,
	}

	q, err := New(adapter, config)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := q.PublishJSON(ctx, map[string]int{"count": i}, nil)
		require.NoError(t, err)
	}

	stats, err := q.GetStats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.TotalMessages, int64(5))
}

func TestMessage_AckNack(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := Config{
		Name:              "ack:tasks",
		ConsumerGroup:     "translators",
		ConsumerName:      "test-consumer",
		MaxAttempts:       5,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         1,
	}

	q, err := New(adapter, config)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	t.Run("ack marks message as processed", func(t *testing.T) {
		msgID, err := q.Publish(context.Background(), []byte(`{"test":"data"}`), map[string]string{})
		require.NoError(t, err)

		msg := &Message{
			ID:    msgID,
			queue: q,
		}

		err = msg.Ack()
		assert.NoError(t, err)
		assert.True(t, msg.acked)
	})

	t.Run("nack marks message for retry", func(t *testing.T) {
		msg := &Message{
			ID:    "test-2",
			queue: q,
		}

		err := msg.Nack()
		assert.NoError(t, err)
		assert.False(t, msg.acked)
		assert.True(t, msg.nacked)
	})

	t.Run("cannot ack already acked message", func(t *testing.T) {
		msg := &Message{
			ID:    "test-3",
			acked: true,
		}

		err := msg.Ack()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already acknowledged")
	})

	t.Run("cannot nack already nacked message", func(t *testing.T) {
		msg := &Message{
			ID:     "test-4",
			nacked: true,
		}

		err := msg.Nack()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already rejected")
	})
}

func TestQueue_RequiresName(t *testing.T) {
	_, adapter := setupTestRedis(t)

	_, err := New(adapter, Config{})
	assert.Error(t, err)
}

func TestQueue_Stop(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := Config{
		Name:              "stop:tasks",
		ConsumerGroup:     "translators",
		ConsumerName:      "test-consumer",
		MaxAttempts:       5,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         1,
	}

	q, err := New(adapter, config)
	require.NoError(t, err)

	err = q.Consume(func(ctx context.Context, msg *Message) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	err = q.Stop(2 * time.Second)
	assert.NoError(t, err)
}
