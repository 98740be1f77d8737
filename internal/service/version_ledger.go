package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/event"
	"github.com/damoang/tourlog-backend/internal/repository"
)

// DefaultMaxVersions 아이템당 보존 버전 수
const DefaultMaxVersions = 3

// VersionLedger keeps a bounded history of pre-images per content item.
type VersionLedger struct {
	versions    repository.VersionRepository
	items       repository.ItemRepository
	bus         *event.Bus
	maxVersions int
	now         func() time.Time
	logger      zerolog.Logger
}

// NewVersionLedger 생성자
func NewVersionLedger(
	versions repository.VersionRepository,
	items repository.ItemRepository,
	bus *event.Bus,
	maxVersions int,
	now func() time.Time,
	logger zerolog.Logger,
) *VersionLedger {
	if maxVersions <= 0 {
		maxVersions = DefaultMaxVersions
	}
	if now == nil {
		now = time.Now
	}
	return &VersionLedger{
		versions:    versions,
		items:       items,
		bus:         bus,
		maxVersions: maxVersions,
		now:         now,
		logger:      logger,
	}
}

// OnItemUpdated records the pre-image when the edit changed content.
// Restore writes are not versioned themselves.
func (l *VersionLedger) OnItemUpdated(ctx context.Context, ev event.ItemUpdated) error {
	if ev.Origin == event.OriginRestore {
		return nil
	}
	if !IsContentChange(ev.Before, ev.After) {
		return nil
	}
	res := l.append(ctx, ev.Before.ID, domain.SnapshotOf(ev.Before), ev.ID)
	return res.Err
}

// Append stores snap as the newest version of itemID and prunes the rest.
func (l *VersionLedger) Append(ctx context.Context, itemID string, snap domain.VersionSnapshot) Result {
	return l.append(ctx, itemID, snap, "")
}

func (l *VersionLedger) append(ctx context.Context, itemID string, snap domain.VersionSnapshot, eventID string) Result {
	snap.ID = uuid.Must(uuid.NewV7()).String()
	snap.ItemID = itemID
	snap.CreatedAt = l.now().UTC()

	pruned, err := l.versions.AppendBounded(ctx, &snap, l.maxVersions, eventID)
	if errors.Is(err, repository.ErrAlreadyProcessed) {
		l.logger.Debug().Str("item_id", itemID).Str("event_id", eventID).Msg("version already recorded for event")
		return skipped("redelivery")
	}
	if err != nil {
		return failed(err)
	}

	l.logger.Debug().
		Str("item_id", itemID).
		Str("version_id", snap.ID).
		Int64("pruned", pruned).
		Msg("version appended")
	return applied()
}

// Prune keeps the newest maxVersions snapshots of itemID.
func (l *VersionLedger) Prune(ctx context.Context, itemID string, maxVersions int) Result {
	if maxVersions <= 0 {
		maxVersions = l.maxVersions
	}
	n, err := l.versions.Prune(ctx, itemID, maxVersions)
	if err != nil {
		return failed(err)
	}
	if n == 0 {
		return skipped("within bound")
	}
	return applied()
}

// List 아이템 버전 이력 (최신순)
func (l *VersionLedger) List(ctx context.Context, itemID string) ([]*domain.VersionSnapshot, error) {
	if _, err := l.items.FindByID(ctx, itemID); err != nil {
		if errors.Is(err, common.ErrItemNotFound) {
			return nil, common.NotFound("item not found", err)
		}
		return nil, common.Internal("failed to load item", err)
	}
	snaps, err := l.versions.ListByItem(ctx, itemID)
	if err != nil {
		return nil, common.Internal("failed to list versions", err)
	}
	return snaps, nil
}

// Restore overwrites the live item's title, body and excerpt with the named
// version and stamps restore provenance.
func (l *VersionLedger) Restore(ctx context.Context, itemID, versionID, actorID string) (*domain.ContentItem, error) {
	if actorID == "" {
		return nil, common.Unauthenticated("login required")
	}
	if itemID == "" || versionID == "" {
		return nil, common.InvalidArgument("item id and version id are required", nil)
	}

	snap, err := l.versions.FindByID(ctx, itemID, versionID)
	if errors.Is(err, common.ErrVersionNotFound) {
		return nil, common.NotFound("version not found", err)
	}
	if err != nil {
		return nil, common.Internal("failed to load version", err)
	}

	item, err := l.items.FindByID(ctx, itemID)
	if errors.Is(err, common.ErrItemNotFound) {
		return nil, common.NotFound("item not found", err)
	}
	if err != nil {
		return nil, common.Internal("failed to load item", err)
	}
	// 휴지통 아이템은 복원하지 않는다 (updated_at이 갱신되면 영구 삭제가 미뤄진다)
	if item.Status == domain.StatusTrash {
		return nil, common.InvalidArgument("trashed items cannot be restored", common.ErrInvalidStatus)
	}

	before := item.Clone()
	now := l.now().UTC()
	item.Title = snap.Title
	item.Body = snap.Body
	item.Excerpt = snap.Excerpt
	item.RestoredFrom = &snap.ID
	item.RestoredBy = &actorID
	item.RestoredAt = &now
	item.UpdatedAt = now

	if err := l.items.Save(ctx, item); err != nil {
		return nil, common.Internal("failed to restore version", err)
	}

	l.logger.Info().
		Str("item_id", itemID).
		Str("version_id", versionID).
		Str("actor_id", actorID).
		Msg("version restored")

	// 부수 효과 실패는 복원 결과에 영향 없음
	_ = l.bus.Publish(ctx, event.ItemUpdated{
		ID:         uuid.NewString(),
		Before:     before,
		After:      item.Clone(),
		Origin:     event.OriginRestore,
		ActorID:    actorID,
		OccurredAt: now,
	})
	return item, nil
}
