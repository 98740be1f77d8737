package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/damoang/tourlog-backend/internal/domain"
)

// Origin 변경을 일으킨 주체
type Origin string

const (
	OriginEditor    Origin = "editor"
	OriginScheduler Origin = "scheduler"
	OriginRestore   Origin = "restore"
)

// ItemUpdated is delivered once per committed ContentItem update.
// Delivery is at-least-once: consumers must tolerate seeing the same ID twice.
type ItemUpdated struct {
	ID         string             `json:"id"`
	Before     domain.ContentItem `json:"before"`
	After      domain.ContentItem `json:"after"`
	Origin     Origin             `json:"origin"`
	ActorID    string             `json:"actor_id,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Handler 이벤트 핸들러. 반환된 에러는 버스가 로그만 남긴다.
type Handler func(ctx context.Context, ev ItemUpdated) error

// Result 핸들러별 실행 결과
type Result struct {
	Handler string
	Err     error
}

type subscription struct {
	name    string
	handler Handler
}

// Bus delivers ItemUpdated events to subscribers synchronously, in
// subscription order. A failing or panicking handler never stops the others.
type Bus struct {
	subscribers []subscription
	mu          sync.RWMutex
	logger      zerolog.Logger
}

// NewBus 생성자
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers handler under name
func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscription{name: name, handler: handler})
	b.logger.Debug().Str("handler", name).Msg("subscribed to item updates")
}

// Publish runs every handler and returns their results. Failures are logged
// here; callers that only need best-effort delivery discard the results.
func (b *Bus) Publish(ctx context.Context, ev ItemUpdated) []Result {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	results := make([]Result, 0, len(subs))
	for _, s := range subs {
		err := b.dispatch(ctx, s, ev)
		if err != nil {
			b.logger.Error().Err(err).
				Str("handler", s.name).
				Str("event_id", ev.ID).
				Str("item_id", ev.After.ID).
				Msg("item update handler failed")
		}
		results = append(results, Result{Handler: s.name, Err: err})
	}
	return results
}

func (b *Bus) dispatch(ctx context.Context, s subscription, ev ItemUpdated) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return s.handler(ctx, ev)
}

// Handlers 구독 현황 조회
func (b *Bus) Handlers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		names = append(names, s.name)
	}
	return names
}

// Failed returns only the failed results
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
