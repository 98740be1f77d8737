package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/event"
	"github.com/damoang/tourlog-backend/internal/repository"
)

// 스케줄 interval id
const (
	IntervalPublishDue = "publish-due"
	IntervalTrashEvict = "trash-evict"
)

// DefaultTrashRetention 휴지통 보존 기간
const DefaultTrashRetention = 30 * 24 * time.Hour

var sweepItems = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tourlog_sweep_items_total",
		Help: "Items transitioned or evicted by scheduled sweeps",
	},
	[]string{"interval"},
)

// PublishScheduler advances time-gated status transitions.
type PublishScheduler struct {
	items     repository.ItemRepository
	bus       *event.Bus
	retention time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewPublishScheduler 생성자
func NewPublishScheduler(items repository.ItemRepository, bus *event.Bus, retention time.Duration, now func() time.Time, logger zerolog.Logger) *PublishScheduler {
	if retention <= 0 {
		retention = DefaultTrashRetention
	}
	if now == nil {
		now = time.Now
	}
	return &PublishScheduler{items: items, bus: bus, retention: retention, now: now, logger: logger}
}

// Intervals 지원하는 interval id 목록
func (s *PublishScheduler) Intervals() []string {
	return []string{IntervalPublishDue, IntervalTrashEvict}
}

// OnInterval runs the sweep named by intervalID.
func (s *PublishScheduler) OnInterval(ctx context.Context, intervalID string) error {
	switch intervalID {
	case IntervalPublishDue:
		_, err := s.PublishDue(ctx)
		return err
	case IntervalTrashEvict:
		_, err := s.EvictTrash(ctx)
		return err
	}
	return common.ErrUnknownInterval
}

// Pending counts what the sweep would touch right now, without writing.
func (s *PublishScheduler) Pending(ctx context.Context, intervalID string) (int64, error) {
	now := s.now().UTC()
	switch intervalID {
	case IntervalPublishDue:
		return s.items.CountPublishDue(ctx, now)
	case IntervalTrashEvict:
		return s.items.CountEvictable(ctx, now.Add(-s.retention))
	}
	return 0, common.ErrUnknownInterval
}

// PublishDue publishes every scheduled item whose time has come, then feeds
// each committed transition to the item-update subscribers.
func (s *PublishScheduler) PublishDue(ctx context.Context) (int, error) {
	now := s.now().UTC()

	transitions, err := s.items.PublishDue(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, tr := range transitions {
		_ = s.bus.Publish(ctx, event.ItemUpdated{
			ID:         uuid.NewString(),
			Before:     tr.Before,
			After:      tr.After,
			Origin:     event.OriginScheduler,
			OccurredAt: now,
		})
	}

	sweepItems.WithLabelValues(IntervalPublishDue).Add(float64(len(transitions)))
	s.logger.Info().Str("interval", IntervalPublishDue).Int("count", len(transitions)).Msg("publish sweep finished")
	return len(transitions), nil
}

// EvictTrash hard-deletes items trashed longer than the retention period.
func (s *PublishScheduler) EvictTrash(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.retention)

	ids, err := s.items.EvictTrash(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	sweepItems.WithLabelValues(IntervalTrashEvict).Add(float64(len(ids)))
	s.logger.Info().
		Str("interval", IntervalTrashEvict).
		Time("cutoff", cutoff).
		Int("count", len(ids)).
		Strs("item_ids", ids).
		Msg("trash sweep finished")
	return len(ids), nil
}
