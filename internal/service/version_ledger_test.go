package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/event"
)

func createDraft(t *testing.T, e *engine, title string, categories ...string) *domain.ContentItem {
	t.Helper()
	created, err := e.content.Create(context.Background(), "editor-1", &domain.CreateItemRequest{
		Title:       title,
		Body:        "본문",
		CategoryIDs: categories,
	})
	require.NoError(t, err)
	return created
}

func TestVersionLedger_BoundedHistory(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "v0")

	for i := 1; i <= 6; i++ {
		e.clock.Advance(time.Minute)
		_, err := e.content.Update(ctx, created.ID, "editor-1", &domain.UpdateItemRequest{Title: strPtr(fmt.Sprintf("v%d", i))})
		require.NoError(t, err)
		assert.LessOrEqual(t, e.versionCount(t, created.ID), int64(3))
	}

	snaps, err := e.ledger.List(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	// 스냅샷은 변경 직전 상태를 담는다
	assert.Equal(t, "v5", snaps[0].Title)
	assert.Equal(t, "v4", snaps[1].Title)
	assert.Equal(t, "v3", snaps[2].Title)
}

func TestVersionLedger_IgnoresNonContentEdits(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "same")

	after := created.Clone()
	after.ViewCount = 99
	after.UpdatedAt = after.UpdatedAt.Add(time.Hour)

	require.NoError(t, e.ledger.OnItemUpdated(ctx, event.ItemUpdated{ID: "ev-1", Before: *created, After: after}))
	assert.Zero(t, e.versionCount(t, created.ID))
}

func TestVersionLedger_RedeliveryAppendsOnce(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "before")

	after := created.Clone()
	after.Title = "after"
	ev := event.ItemUpdated{ID: "ev-dup", Before: *created, After: after}

	require.NoError(t, e.ledger.OnItemUpdated(ctx, ev))
	require.NoError(t, e.ledger.OnItemUpdated(ctx, ev))
	assert.Equal(t, int64(1), e.versionCount(t, created.ID))
}

func TestVersionLedger_AppendMissingItemReturnsResult(t *testing.T) {
	e := newEngine(t)

	res := e.ledger.Append(context.Background(), "ghost", domain.VersionSnapshot{Title: "x"})
	assert.False(t, res.Applied)
	assert.ErrorIs(t, res.Err, common.ErrItemNotFound)
}

func TestVersionLedger_Restore(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "original")

	_, err := e.content.Update(ctx, created.ID, "editor-1", &domain.UpdateItemRequest{
		Title:   strPtr("rewritten"),
		Excerpt: strPtr("new excerpt"),
	})
	require.NoError(t, err)

	snaps, err := e.ledger.List(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	e.clock.Advance(time.Hour)
	restored, err := e.ledger.Restore(ctx, created.ID, snaps[0].ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "original", restored.Title)
	assert.Equal(t, "", restored.Excerpt)
	require.NotNil(t, restored.RestoredFrom)
	assert.Equal(t, snaps[0].ID, *restored.RestoredFrom)
	assert.Equal(t, "admin-1", *restored.RestoredBy)
	assert.True(t, restored.RestoredAt.Equal(e.clock.Now()))

	// 복원 자체는 버전을 만들지 않는다
	assert.Equal(t, int64(1), e.versionCount(t, created.ID))

	// 다음 편집은 복원된 상태를 스냅샷으로 남긴다
	_, err = e.content.Update(ctx, created.ID, "editor-1", &domain.UpdateItemRequest{Title: strPtr("third")})
	require.NoError(t, err)
	snaps, err = e.ledger.List(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "original", snaps[0].Title)
}

func TestVersionLedger_RestoreErrors(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "original")

	tests := []struct {
		name      string
		itemID    string
		versionID string
		actorID   string
		want      common.Code
	}{
		{"anonymous", created.ID, "v", "", common.CodeUnauthenticated},
		{"missing version id", created.ID, "", "admin-1", common.CodeInvalidArgument},
		{"unknown version", created.ID, "nope", "admin-1", common.CodeNotFound},
		{"unknown item", "ghost", "nope", "admin-1", common.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ledger.Restore(ctx, tt.itemID, tt.versionID, tt.actorID)
			require.Error(t, err)
			assert.Equal(t, tt.want, common.CodeOf(err))
		})
	}
}

func TestVersionLedger_RestoreRejectsTrash(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "original")

	_, err := e.content.Update(ctx, created.ID, "editor-1", &domain.UpdateItemRequest{Title: strPtr("rewritten")})
	require.NoError(t, err)
	snaps, err := e.ledger.List(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	trashed, err := e.content.Transition(ctx, created.ID, "editor-1", domain.StatusTrash)
	require.NoError(t, err)

	e.clock.Advance(time.Hour)
	_, err = e.ledger.Restore(ctx, created.ID, snaps[0].ID, "admin-1")
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
	assert.ErrorIs(t, err, common.ErrInvalidStatus)

	stored, err := e.items.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", stored.Title)
	assert.True(t, stored.UpdatedAt.Equal(trashed.UpdatedAt), "eviction clock must not restart")
	assert.Nil(t, stored.RestoredFrom)
}

func TestVersionLedger_Prune(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	created := createDraft(t, e, "v0")

	for i := 0; i < 3; i++ {
		e.clock.Advance(time.Second)
		res := e.ledger.Append(ctx, created.ID, domain.SnapshotOf(*created))
		require.True(t, res.Applied)
	}

	res := e.ledger.Prune(ctx, created.ID, 1)
	assert.True(t, res.Applied)
	assert.Equal(t, int64(1), e.versionCount(t, created.ID))

	res = e.ledger.Prune(ctx, created.ID, 1)
	assert.False(t, res.Applied)
	assert.NoError(t, res.Err)
}
