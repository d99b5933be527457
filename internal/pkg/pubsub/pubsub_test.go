package pubsub

import (
	"context"
	"encoding/json"
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
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestStatusMessage_JSON(t *testing.T) {
	msg := &StatusMessage{
		Type:         TypeStatusChanged,
		UserID:       1,
		CommitmentID: 2,
		From:         "active",
		To:           "failed",
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "user_id")
	assert.Contains(t, raw, "commitment_id")
	assert.Equal(t, "failed", raw["to"])
}

func TestStatusMessage_OmitEmpty(t *testing.T) {
	msg := &StatusMessage{Type: TypePlanChanged, UserID: 1, To: "builder"}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	_, hasCommitment := raw["commitment_id"]
	_, hasFrom := raw["from"]
	assert.False(t, hasCommitment)
	assert.False(t, hasFrom)
}

func TestPublisher_NilClient(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.PublishStatus(context.Background(), &StatusMessage{UserID: 1}))
	assert.NoError(t, NewPublisher(nil).PublishStatus(context.Background(), &StatusMessage{UserID: 1}))
}

func TestPublisherSubscriber(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *StatusMessage, 1)
	go func() {
		_ = subscriber.Subscribe(ctx, func(msg *StatusMessage) {
			received <- msg
		})
	}()

	// 等订阅建立
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, ChannelCommitmentStatus).Result()
		return err == nil && n[ChannelCommitmentStatus] > 0
	}, 2*time.Second, 10*time.Millisecond)

	err := publisher.PublishStatus(ctx, &StatusMessage{
		UserID:       7,
		CommitmentID: 42,
		From:         "created",
		To:           "active",
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, TypeStatusChanged, msg.Type) // 默认类型
		assert.Equal(t, int64(7), msg.UserID)
		assert.Equal(t, int64(42), msg.CommitmentID)
		assert.Equal(t, "active", msg.To)
		assert.False(t, msg.At.IsZero())
	case <-ctx.Done():
		t.Fatal("Timeout waiting for message")
	}
}

func TestSubscriber_StopsOnCancel(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSubscriber(client).Subscribe(ctx, func(*StatusMessage) {})
	}()

	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
