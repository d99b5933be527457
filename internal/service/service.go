package service

import (
	"context"
	"time"

	"github.com/qs3c/lifedebt_server/internal/pkg/pubsub"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Clock 返回当前时间，测试中可替换
type Clock func() time.Time

// StatusPublisher 推送承诺状态与套餐变化；*pubsub.Publisher 为 nil 时不做任何事
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg *pubsub.StatusMessage) error
}
