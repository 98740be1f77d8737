package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
)

func TestPublishScheduler_PublishesDueItems(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	created := createDraft(t, e, "벚꽃 투어 후기", "tour-review")
	_, err := e.content.Schedule(ctx, created.ID, "editor-1", e.clock.Now().Add(10*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, e.termCount(t, domain.TermCategory, "tour-review"), "scheduled items are not counted")

	e.clock.Advance(11 * time.Minute)
	sweepAt := e.clock.Now()

	pending, err := e.scheduler.Pending(ctx, IntervalPublishDue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	n, err := e.scheduler.PublishDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.items.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(sweepAt))
	assert.True(t, got.UpdatedAt.Equal(sweepAt))

	// 발행으로 카테고리 멤버십이 생긴다
	assert.Equal(t, int64(1), e.termCount(t, domain.TermCategory, "tour-review"))

	// 같은 시점의 재실행은 아무것도 하지 않는다
	n, err = e.scheduler.PublishDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(1), e.termCount(t, domain.TermCategory, "tour-review"))
}

func TestPublishScheduler_LeavesFutureItems(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	created := createDraft(t, e, "later")
	_, err := e.content.Schedule(ctx, created.ID, "editor-1", e.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	n, err := e.scheduler.PublishDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := e.items.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status)
	assert.Nil(t, got.PublishedAt)
}

func TestPublishScheduler_EvictTrash(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	now := e.clock.Now()

	seed := func(updated time.Time) string {
		id := uuid.NewString()
		require.NoError(t, e.db.Create(&domain.ContentItem{
			ID:        id,
			Status:    domain.StatusTrash,
			CreatedAt: updated,
			UpdatedAt: updated,
		}).Error)
		snap := domain.SnapshotOf(domain.ContentItem{ID: id})
		snap.ID = uuid.NewString()
		snap.CreatedAt = updated
		require.NoError(t, e.db.Create(&snap).Error)
		return id
	}
	old := seed(now.Add(-31 * 24 * time.Hour))
	recent := seed(now.Add(-29 * 24 * time.Hour))

	pending, err := e.scheduler.Pending(ctx, IntervalTrashEvict)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	require.NoError(t, e.scheduler.OnInterval(ctx, IntervalTrashEvict))

	_, err = e.items.FindByID(ctx, old)
	assert.ErrorIs(t, err, common.ErrItemNotFound)
	assert.Zero(t, e.versionCount(t, old))

	_, err = e.items.FindByID(ctx, recent)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), e.versionCount(t, recent))

	n, err := e.scheduler.EvictTrash(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishScheduler_UnknownInterval(t *testing.T) {
	e := newEngine(t)

	assert.ErrorIs(t, e.scheduler.OnInterval(context.Background(), "hourly"), common.ErrUnknownInterval)
	_, err := e.scheduler.Pending(context.Background(), "hourly")
	assert.ErrorIs(t, err, common.ErrUnknownInterval)
}
