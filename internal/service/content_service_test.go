package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/event"
	"github.com/damoang/tourlog-backend/internal/repository"
)

type failingViews struct {
	repository.ItemRepository
}

func (failingViews) IncrementViewCount(context.Context, string) error {
	return errors.New("db down")
}

func TestContentService_RecordViewLogsFailure(t *testing.T) {
	e := newEngine(t)
	created := createDraft(t, e, "post")

	var buf bytes.Buffer
	svc := NewContentService(failingViews{e.items}, e.terms, e.bus, e.clock.Now, zerolog.New(&buf))

	err := svc.RecordView(context.Background(), created.ID)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "failed to record view")
	assert.Contains(t, buf.String(), created.ID)
}

func TestContentService_RecordView(t *testing.T) {
	e := newEngine(t)
	created := createDraft(t, e, "post")

	require.NoError(t, e.content.RecordView(context.Background(), created.ID))
	stored, err := e.items.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), stored.ViewCount)
}

func TestContentService_CreateSeedsTerms(t *testing.T) {
	e := newEngine(t)

	created := createDraft(t, e, "부산 야경 투어", "tour-review", "night", "night")
	assert.Equal(t, domain.StatusDraft, created.Status)
	assert.Equal(t, domain.StringSet{"night", "tour-review"}, created.CategoryIDs)

	// 참조된 term은 count 0으로 생성된다
	assert.Zero(t, e.termCount(t, domain.TermCategory, "night"))
}

func TestContentService_PublishSetsPublishedAtOnce(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "post", "A")

	first := e.clock.Now()
	published, err := e.content.Transition(ctx, created.ID, "editor-1", domain.StatusPublished)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, published.PublishedAt.Equal(first))
	assert.Equal(t, int64(1), e.termCount(t, domain.TermCategory, "A"))

	e.clock.Advance(time.Hour)
	_, err = e.content.Transition(ctx, created.ID, "editor-1", domain.StatusPrivate)
	require.NoError(t, err)
	assert.Zero(t, e.termCount(t, domain.TermCategory, "A"))

	e.clock.Advance(time.Hour)
	again, err := e.content.Transition(ctx, created.ID, "editor-1", domain.StatusPublished)
	require.NoError(t, err)
	assert.True(t, again.PublishedAt.Equal(first))
	assert.Equal(t, int64(1), e.termCount(t, domain.TermCategory, "A"))
}

func TestContentService_PublishedEditAddsCategory(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "post", "A")
	_, err := e.content.Transition(ctx, created.ID, "editor-1", domain.StatusPublished)
	require.NoError(t, err)

	cats := []string{"A", "B"}
	_, err = e.content.Update(ctx, created.ID, "editor-1", &domain.UpdateItemRequest{CategoryIDs: &cats})
	require.NoError(t, err)

	assert.Equal(t, int64(1), e.termCount(t, domain.TermCategory, "A"))
	assert.Equal(t, int64(1), e.termCount(t, domain.TermCategory, "B"))
}

func TestContentService_ScheduleRequiresFuture(t *testing.T) {
	e := newEngine(t)
	created := createDraft(t, e, "post")

	_, err := e.content.Schedule(context.Background(), created.ID, "editor-1", e.clock.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrScheduleInPast))
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestContentService_TransitionRules(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "post")

	_, err := e.content.Transition(ctx, created.ID, "editor-1", domain.StatusTrash)
	require.NoError(t, err)

	_, err = e.content.Transition(ctx, created.ID, "editor-1", domain.StatusPublished)
	assert.ErrorIs(t, err, common.ErrInvalidStatus, "trash can only go back to draft")

	_, err = e.content.Update(ctx, created.ID, "editor-1", &domain.UpdateItemRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrInvalidStatus)

	restored, err := e.content.Transition(ctx, created.ID, "editor-1", domain.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, restored.Status)
}

func TestContentService_SecondaryFailureDoesNotFailWrite(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.bus.Subscribe("broken", func(context.Context, event.ItemUpdated) error {
		return errors.New("downstream unavailable")
	})
	created := createDraft(t, e, "post")

	updated, err := e.content.Update(ctx, created.ID, "editor-1", &domain.UpdateItemRequest{Title: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
}

func TestContentService_ListAndGet(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	createDraft(t, e, "one")
	e.clock.Advance(time.Second)
	second := createDraft(t, e, "two")

	items, meta, err := e.content.List(ctx, domain.StatusDraft, 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, 20, meta.PerPage)

	got, err := e.content.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", got.Title)

	_, err = e.content.Get(ctx, "missing")
	assert.Equal(t, common.CodeNotFound, common.CodeOf(err))

	require.NoError(t, e.content.RecordView(ctx, second.ID))
	got, _ = e.content.Get(ctx, second.ID)
	assert.Equal(t, uint(1), got.ViewCount)
}
