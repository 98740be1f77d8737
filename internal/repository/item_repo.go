package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository content item data access
type ItemRepository interface {
	FindByID(ctx context.Context, id string) (*domain.ContentItem, error)
	ListByStatus(ctx context.Context, status domain.Status, page, limit int) ([]*domain.ContentItem, int64, error)
	Create(ctx context.Context, item *domain.ContentItem) error
	Save(ctx context.Context, item *domain.ContentItem) error
	IncrementViewCount(ctx context.Context, id string) error

	// 스케줄러 전용
	PublishDue(ctx context.Context, now time.Time) ([]domain.Transition, error)
	CountPublishDue(ctx context.Context, now time.Time) (int64, error)
	EvictTrash(ctx context.Context, cutoff time.Time) ([]string, error)
	CountEvictable(ctx context.Context, cutoff time.Time) (int64, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) FindByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) ListByStatus(ctx context.Context, status domain.Status, page, limit int) ([]*domain.ContentItem, int64, error) {
	var items []*domain.ContentItem
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ContentItem{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("updated_at DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) Create(ctx context.Context, item *domain.ContentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// editableColumns are written by Save. view_count/comment_count are only
// changed by their own atomic increments so a concurrent view is never lost.
var editableColumns = []string{
	"title", "body", "excerpt", "author_id", "status", "scheduled_for", "published_at",
	"category_ids", "tag_ids", "restored_from", "restored_by", "restored_at", "updated_at",
}

func (r *itemRepository) Save(ctx context.Context, item *domain.ContentItem) error {
	return r.db.WithContext(ctx).Model(item).Select(editableColumns).Updates(item).Error
}

func (r *itemRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.ContentItem{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func publishDueQuery(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Model(&domain.ContentItem{}).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?", domain.StatusScheduled, now)
}

// PublishDue transitions every due scheduled item to published in a single
// transaction and returns the committed before/after pairs.
func (r *itemRepository) PublishDue(ctx context.Context, now time.Time) ([]domain.Transition, error) {
	var transitions []domain.Transition

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []domain.ContentItem
		if err := publishDueQuery(tx, now).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("scheduled_for ASC, id ASC").
			Find(&due).Error; err != nil {
			return fmt.Errorf("query due items: %w", err)
		}

		transitions = make([]domain.Transition, 0, len(due))
		for _, before := range due {
			after := before.Clone()
			after.Status = domain.StatusPublished
			if after.PublishedAt == nil {
				publishedAt := now
				after.PublishedAt = &publishedAt
			}
			after.UpdatedAt = now

			// scheduled 조건을 다시 걸어 동시 실행 시 이중 전환을 막는다
			res := tx.Model(&domain.ContentItem{}).
				Where("id = ? AND status = ?", before.ID, domain.StatusScheduled).
				Updates(map[string]interface{}{
					"status":       after.Status,
					"published_at": after.PublishedAt,
					"updated_at":   after.UpdatedAt,
				})
			if res.Error != nil {
				return fmt.Errorf("publish item %s: %w", before.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			transitions = append(transitions, domain.Transition{Before: before, After: after})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

func (r *itemRepository) CountPublishDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := publishDueQuery(r.db.WithContext(ctx), now).Count(&n).Error
	return n, err
}

func evictableQuery(db *gorm.DB, cutoff time.Time) *gorm.DB {
	return db.Model(&domain.ContentItem{}).
		Where("status = ? AND updated_at <= ?", domain.StatusTrash, cutoff)
}

// EvictTrash hard-deletes trashed items older than cutoff together with their
// versions, and expires processed-event markers of the same age.
func (r *itemRepository) EvictTrash(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := evictableQuery(tx, cutoff).Order("id ASC").Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("query trash: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("item_id IN ?", ids).Delete(&domain.VersionSnapshot{}).Error; err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
		if err := evictableQuery(tx, cutoff).Where("id IN ?", ids).Delete(&domain.ContentItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := tx.Where("processed_at <= ?", cutoff).Delete(&domain.ProcessedEvent{}).Error; err != nil {
			return fmt.Errorf("expire processed events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *itemRepository) CountEvictable(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := evictableQuery(r.db.WithContext(ctx), cutoff).Count(&n).Error
	return n, err
}
