package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/event"
	"github.com/damoang/tourlog-backend/internal/repository"
)

// TaxonomyCounter keeps category and tag counts equal to the number of
// published items referencing each term, by applying signed diffs.
type TaxonomyCounter struct {
	terms  repository.TermRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewTaxonomyCounter 생성자
func NewTaxonomyCounter(terms repository.TermRepository, now func() time.Time, logger zerolog.Logger) *TaxonomyCounter {
	if now == nil {
		now = time.Now
	}
	return &TaxonomyCounter{terms: terms, now: now, logger: logger}
}

// OnItemUpdated 이벤트 핸들러
func (c *TaxonomyCounter) OnItemUpdated(ctx context.Context, ev event.ItemUpdated) error {
	return c.reconcile(ctx, ev.ID, ev.Before, ev.After).Err
}

// Reconcile applies the count changes implied by before → after.
func (c *TaxonomyCounter) Reconcile(ctx context.Context, before, after domain.ContentItem) Result {
	return c.reconcile(ctx, "", before, after)
}

func (c *TaxonomyCounter) reconcile(ctx context.Context, eventID string, before, after domain.ContentItem) Result {
	if !before.IsPublished() && !after.IsPublished() {
		return skipped("never published")
	}

	deltas := TermDeltas(before, after)
	if len(deltas) == 0 {
		return skipped("membership unchanged")
	}

	missing, err := c.terms.ApplyDeltas(ctx, eventID, deltas, c.now().UTC())
	if errors.Is(err, repository.ErrAlreadyProcessed) {
		return skipped("redelivery")
	}
	if err != nil {
		return failed(err)
	}

	for _, d := range missing {
		c.logger.Warn().
			Str("item_id", after.ID).
			Str("kind", string(d.Kind)).
			Str("term_id", d.ID).
			Int("delta", d.Delta).
			Msg("taxonomy term missing, delta dropped")
	}
	c.logger.Debug().Str("item_id", after.ID).Int("deltas", len(deltas)).Msg("taxonomy counts reconciled")
	return applied()
}

// TermDeltas diffs the published membership of before and after. An item
// that is not published contributes no membership, so publishing an item
// counts all of its terms and unpublishing it releases them.
func TermDeltas(before, after domain.ContentItem) []repository.TermDelta {
	bc, bt := publishedMembership(before)
	ac, at := publishedMembership(after)

	var deltas []repository.TermDelta
	deltas = appendDiff(deltas, domain.TermCategory, bc, ac)
	deltas = appendDiff(deltas, domain.TermTag, bt, at)
	return deltas
}

func publishedMembership(item domain.ContentItem) (categories, tags domain.StringSet) {
	if !item.IsPublished() {
		return nil, nil
	}
	return item.CategoryIDs.Normalize(), item.TagIDs.Normalize()
}

func appendDiff(out []repository.TermDelta, kind domain.TermKind, before, after domain.StringSet) []repository.TermDelta {
	for _, id := range before.Minus(after) {
		out = append(out, repository.TermDelta{Kind: kind, ID: id, Delta: -1})
	}
	for _, id := range after.Minus(before) {
		out = append(out, repository.TermDelta{Kind: kind, ID: id, Delta: 1})
	}
	return out
}
