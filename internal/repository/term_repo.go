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

// ConsumerTaxonomyCounter is the processed-event consumer name of the counter
const ConsumerTaxonomyCounter = "taxonomy-counter"

// TermDelta is a signed count change for one term
type TermDelta struct {
	Kind  domain.TermKind
	ID    string
	Delta int
}

// TermRepository taxonomy term data access
type TermRepository interface {
	// ApplyDeltas applies all deltas in a single transaction. Deltas for
	// unknown terms are reported in missing and otherwise ignored.
	ApplyDeltas(ctx context.Context, eventID string, deltas []TermDelta, now time.Time) (missing []TermDelta, err error)
	EnsureTerms(ctx context.Context, kind domain.TermKind, ids []string, now time.Time) error
	Upsert(ctx context.Context, term *domain.TaxonomyTerm) error
	FindByKey(ctx context.Context, kind domain.TermKind, id string) (*domain.TaxonomyTerm, error)
	FindByKind(ctx context.Context, kind domain.TermKind) ([]*domain.TaxonomyTerm, error)
}

type termRepository struct {
	db *gorm.DB
}

// NewTermRepository creates a new TermRepository
func NewTermRepository(db *gorm.DB) TermRepository {
	return &termRepository{db: db}
}

func (r *termRepository) ApplyDeltas(ctx context.Context, eventID string, deltas []TermDelta, now time.Time) ([]TermDelta, error) {
	var missing []TermDelta

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if eventID != "" {
			applied, err := markProcessed(tx, ConsumerTaxonomyCounter, eventID, now)
			if err != nil {
				return err
			}
			if !applied {
				return ErrAlreadyProcessed
			}
		}

		for _, d := range deltas {
			// count는 0 아래로 내려가지 않는다
			res := tx.Model(&domain.TaxonomyTerm{}).
				Where("kind = ? AND id = ?", d.Kind, d.ID).
				UpdateColumns(map[string]interface{}{
					"count":      gorm.Expr("CASE WHEN count + ? < 0 THEN 0 ELSE count + ? END", d.Delta, d.Delta),
					"updated_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("apply delta %s/%s: %w", d.Kind, d.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				missing = append(missing, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}

func (r *termRepository) EnsureTerms(ctx context.Context, kind domain.TermKind, ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	terms := make([]domain.TaxonomyTerm, 0, len(ids))
	for _, id := range ids {
		terms = append(terms, domain.TaxonomyTerm{Kind: kind, ID: id, Name: id, UpdatedAt: now})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&terms).Error
}

func (r *termRepository) Upsert(ctx context.Context, term *domain.TaxonomyTerm) error {
	// 이름만 갱신하고 count는 건드리지 않는다
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(term).Error
}

func (r *termRepository) FindByKey(ctx context.Context, kind domain.TermKind, id string) (*domain.TaxonomyTerm, error) {
	var term domain.TaxonomyTerm
	err := r.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).First(&term).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepository) FindByKind(ctx context.Context, kind domain.TermKind) ([]*domain.TaxonomyTerm, error) {
	var terms []*domain.TaxonomyTerm
	err := r.db.WithContext(ctx).Where("kind = ?", kind).Order("count DESC, id ASC").Find(&terms).Error
	return terms, err
}

// markProcessed records eventID for consumer. It returns false when the
// marker already exists, i.e. the event is a redelivery.
func markProcessed(tx *gorm.DB, consumer, eventID string, now time.Time) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.ProcessedEvent{
		Consumer:    consumer,
		EventID:     eventID,
		ProcessedAt: now,
	})
	if res.Error != nil {
		return false, fmt.Errorf("mark event processed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
