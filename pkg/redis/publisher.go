package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher JSON 메시지를 pub/sub 채널로 발행
type Publisher struct {
	client redis.Cmdable
}

// NewPublisher 생성자
func NewPublisher(client redis.Cmdable) *Publisher {
	return &Publisher{client: client}
}

// PublishJSON marshals msg and publishes it on channel
func (p *Publisher) PublishJSON(ctx context.Context, channel string, msg interface{}) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", channel, err)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
