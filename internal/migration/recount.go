package migration

import (
	"fmt"
	"sort"
	"time"

	"github.com/damoang/tourlog-backend/internal/domain"
	"gorm.io/gorm"
)

// CountDrift is a term whose stored count differs from the number of
// published items that reference it.
type CountDrift struct {
	Kind     domain.TermKind
	ID       string
	Stored   int64
	Expected int64
}

// VerifyCounts recomputes every term count from published items and returns
// the terms that drifted. Terms referenced by published items but missing
// from the taxonomy table are reported with Stored = -1.
func VerifyCounts(db *gorm.DB) ([]CountDrift, error) {
	var items []domain.ContentItem
	if err := db.Select("id", "category_ids", "tag_ids").
		Where("status = ?", domain.StatusPublished).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load published items: %w", err)
	}

	type key struct {
		kind domain.TermKind
		id   string
	}
	expected := map[key]int64{}
	for _, item := range items {
		for _, id := range item.CategoryIDs.Normalize() {
			expected[key{domain.TermCategory, id}]++
		}
		for _, id := range item.TagIDs.Normalize() {
			expected[key{domain.TermTag, id}]++
		}
	}

	var terms []domain.TaxonomyTerm
	if err := db.Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("load terms: %w", err)
	}

	var drifts []CountDrift
	for _, term := range terms {
		k := key{term.Kind, term.ID}
		want := expected[k]
		delete(expected, k)
		if term.Count != want {
			drifts = append(drifts, CountDrift{Kind: term.Kind, ID: term.ID, Stored: term.Count, Expected: want})
		}
	}
	for k, want := range expected {
		drifts = append(drifts, CountDrift{Kind: k.kind, ID: k.id, Stored: -1, Expected: want})
	}

	sort.Slice(drifts, func(i, j int) bool {
		if drifts[i].Kind != drifts[j].Kind {
			return drifts[i].Kind < drifts[j].Kind
		}
		return drifts[i].ID < drifts[j].ID
	})
	return drifts, nil
}

// RepairCounts overwrites drifted counts with the recomputed value and creates
// missing terms. Returns the number of terms written.
func RepairCounts(db *gorm.DB, now time.Time) (int, error) {
	drifts, err := VerifyCounts(db)
	if err != nil {
		return 0, err
	}
	if len(drifts) == 0 {
		return 0, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, d := range drifts {
			if d.Stored < 0 {
				term := domain.TaxonomyTerm{Kind: d.Kind, ID: d.ID, Name: d.ID, Count: d.Expected, UpdatedAt: now}
				if err := tx.Create(&term).Error; err != nil {
					return fmt.Errorf("create term %s/%s: %w", d.Kind, d.ID, err)
				}
				continue
			}
			if err := tx.Model(&domain.TaxonomyTerm{}).
				Where("kind = ? AND id = ?", d.Kind, d.ID).
				UpdateColumns(map[string]interface{}{"count": d.Expected, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("repair term %s/%s: %w", d.Kind, d.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(drifts), nil
}
