package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelCommitmentStatus = "commitment_status"

	TypeStatusChanged = "status_changed"
	TypePlanChanged   = "plan_changed"
)

// StatusMessage 承诺状态变化或套餐变化通知
type StatusMessage struct {
	Type         string    `json:"type"`
	UserID       int64     `json:"user_id"`
	CommitmentID int64     `json:"commitment_id,omitempty"`
	From         string    `json:"from,omitempty"`
	To           string    `json:"to"`
	At           time.Time `json:"at"`
}

// Publisher Redis 发布者；client 为 nil 时静默丢弃
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishStatus 发布状态消息
func (p *Publisher) PublishStatus(ctx context.Context, msg *StatusMessage) error {
	if p == nil || p.client == nil {
		return nil
	}
	if msg.Type == "" {
		msg.Type = TypeStatusChanged
	}
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal status message: %w", err)
	}

	return p.client.Publish(ctx, ChannelCommitmentStatus, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 阻塞订阅直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*StatusMessage)) error {
	ps := s.client.Subscribe(ctx, ChannelCommitmentStatus)
	defer ps.Close()

	// 等待订阅确认，避免丢失紧随其后的消息
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var statusMsg StatusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &statusMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&statusMsg)
		}
	}
}
