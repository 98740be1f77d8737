package service

import (
	"context"
	"time"

	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/event"
)

// ChannelContentChanged 콘텐츠 변경 알림 채널 (메일 발송 등 후속 소비자용)
const ChannelContentChanged = "content:changed"

// Publisher pub/sub 발행 포트
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, msg interface{}) error
}

// ContentChanged is the notification payload
type ContentChanged struct {
	ItemID    string        `json:"item_id"`
	Status    domain.Status `json:"status"`
	Origin    event.Origin  `json:"origin"`
	ChangedAt time.Time     `json:"changed_at"`
}

// ChangeNotifier forwards content changes to downstream consumers.
type ChangeNotifier struct {
	publisher Publisher
}

// NewChangeNotifier 생성자
func NewChangeNotifier(publisher Publisher) *ChangeNotifier {
	return &ChangeNotifier{publisher: publisher}
}

// OnItemUpdated publishes only when content actually changed
func (n *ChangeNotifier) OnItemUpdated(ctx context.Context, ev event.ItemUpdated) error {
	if !IsContentChange(ev.Before, ev.After) {
		return nil
	}
	return n.publisher.PublishJSON(ctx, ChannelContentChanged, ContentChanged{
		ItemID:    ev.After.ID,
		Status:    ev.After.Status,
		Origin:    ev.Origin,
		ChangedAt: ev.OccurredAt,
	})
}
