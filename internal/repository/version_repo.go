package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConsumerVersionLedger is the processed-event consumer name of the ledger
const ConsumerVersionLedger = "version-ledger"

// ErrAlreadyProcessed is returned when a redelivered event was already applied
var ErrAlreadyProcessed = errors.New("event already processed")

// VersionRepository content version data access
type VersionRepository interface {
	// AppendBounded inserts snap and prunes the item's history to maxVersions
	// in one transaction holding the owning item's row lock.
	AppendBounded(ctx context.Context, snap *domain.VersionSnapshot, maxVersions int, eventID string) (pruned int64, err error)
	Prune(ctx context.Context, itemID string, maxVersions int) (int64, error)
	FindByID(ctx context.Context, itemID, versionID string) (*domain.VersionSnapshot, error)
	ListByItem(ctx context.Context, itemID string) ([]*domain.VersionSnapshot, error)
	CountByItem(ctx context.Context, itemID string) (int64, error)
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) AppendBounded(ctx context.Context, snap *domain.VersionSnapshot, maxVersions int, eventID string) (int64, error) {
	var pruned int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 같은 아이템에 대한 동시 append를 직렬화한다
		var owner domain.ContentItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", snap.ItemID).First(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("lock item: %w", err)
		}

		if eventID != "" {
			applied, err := markProcessed(tx, ConsumerVersionLedger, eventID, snap.CreatedAt)
			if err != nil {
				return err
			}
			if !applied {
				return ErrAlreadyProcessed
			}
		}

		if err := tx.Create(snap).Error; err != nil {
			return fmt.Errorf("insert version: %w", err)
		}

		pruned, err = pruneTx(tx, snap.ItemID, maxVersions)
		return err
	})
	return pruned, err
}

func (r *versionRepository) Prune(ctx context.Context, itemID string, maxVersions int) (int64, error) {
	var pruned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pruned, err = pruneTx(tx, itemID, maxVersions)
		return err
	})
	return pruned, err
}

// pruneTx keeps the newest maxVersions snapshots (created_at desc, id desc;
// ids are time-ordered UUIDv7 so they break created_at ties).
func pruneTx(tx *gorm.DB, itemID string, maxVersions int) (int64, error) {
	var ids []string
	if err := tx.Model(&domain.VersionSnapshot{}).
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("list versions: %w", err)
	}
	if len(ids) <= maxVersions {
		return 0, nil
	}

	res := tx.Where("id IN ?", ids[maxVersions:]).Delete(&domain.VersionSnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete old versions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *versionRepository) FindByID(ctx context.Context, itemID, versionID string) (*domain.VersionSnapshot, error) {
	var snap domain.VersionSnapshot
	err := r.db.WithContext(ctx).Where("id = ? AND item_id = ?", versionID, itemID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *versionRepository) ListByItem(ctx context.Context, itemID string) ([]*domain.VersionSnapshot, error) {
	var snaps []*domain.VersionSnapshot
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").Find(&snaps).Error
	return snaps, err
}

func (r *versionRepository) CountByItem(ctx context.Context, itemID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.VersionSnapshot{}).Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}
