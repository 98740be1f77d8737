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

// ContentService editor actions on content items
type ContentService interface {
	Create(ctx context.Context, authorID string, req *domain.CreateItemRequest) (*domain.ContentItem, error)
	Update(ctx context.Context, id, actorID string, req *domain.UpdateItemRequest) (*domain.ContentItem, error)
	Schedule(ctx context.Context, id, actorID string, at time.Time) (*domain.ContentItem, error)
	Transition(ctx context.Context, id, actorID string, to domain.Status) (*domain.ContentItem, error)
	Get(ctx context.Context, id string) (*domain.ContentItem, error)
	List(ctx context.Context, status domain.Status, page, limit int) ([]*domain.ContentItem, *common.Meta, error)
	RecordView(ctx context.Context, id string) error
}

// 허용되는 상태 전환 (scheduled 진입은 Schedule 전용)
var allowedTransitions = map[domain.Status][]domain.Status{
	domain.StatusDraft:     {domain.StatusPublished, domain.StatusPrivate, domain.StatusTrash},
	domain.StatusScheduled: {domain.StatusDraft, domain.StatusPublished, domain.StatusPrivate, domain.StatusTrash},
	domain.StatusPublished: {domain.StatusDraft, domain.StatusPrivate, domain.StatusTrash},
	domain.StatusPrivate:   {domain.StatusDraft, domain.StatusPublished, domain.StatusTrash},
	domain.StatusTrash:     {domain.StatusDraft},
}

type contentService struct {
	items  repository.ItemRepository
	terms  repository.TermRepository
	bus    *event.Bus
	now    func() time.Time
	logger zerolog.Logger
}

// NewContentService creates a new ContentService
func NewContentService(items repository.ItemRepository, terms repository.TermRepository, bus *event.Bus, now func() time.Time, logger zerolog.Logger) ContentService {
	if now == nil {
		now = time.Now
	}
	return &contentService{items: items, terms: terms, bus: bus, now: now, logger: logger}
}

func (s *contentService) Create(ctx context.Context, authorID string, req *domain.CreateItemRequest) (*domain.ContentItem, error) {
	if authorID == "" {
		return nil, common.Unauthenticated("login required")
	}
	now := s.now().UTC()
	item := &domain.ContentItem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Body:        req.Body,
		Excerpt:     req.Excerpt,
		AuthorID:    authorID,
		Status:      domain.StatusDraft,
		CategoryIDs: domain.NewStringSet(req.CategoryIDs...),
		TagIDs:      domain.NewStringSet(req.TagIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.ensureTerms(ctx, item, now)
	if err := s.items.Create(ctx, item); err != nil {
		return nil, common.Internal("failed to create item", err)
	}

	s.logger.Info().Str("item_id", item.ID).Str("author_id", authorID).Msg("item created")
	return item, nil
}

func (s *contentService) Update(ctx context.Context, id, actorID string, req *domain.UpdateItemRequest) (*domain.ContentItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.StatusTrash {
		return nil, common.InvalidArgument("trashed items cannot be edited", common.ErrInvalidStatus)
	}

	before := item.Clone()
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.Excerpt != nil {
		item.Excerpt = *req.Excerpt
	}
	if req.CategoryIDs != nil {
		item.CategoryIDs = domain.NewStringSet(*req.CategoryIDs...)
	}
	if req.TagIDs != nil {
		item.TagIDs = domain.NewStringSet(*req.TagIDs...)
	}
	return s.commit(ctx, before, item, actorID)
}

func (s *contentService) Schedule(ctx context.Context, id, actorID string, at time.Time) (*domain.ContentItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusDraft && item.Status != domain.StatusScheduled {
		return nil, common.InvalidArgument("only drafts can be scheduled", common.ErrInvalidStatus)
	}
	now := s.now().UTC()
	if !at.After(now) {
		return nil, common.InvalidArgument("scheduled_for must be in the future", common.ErrScheduleInPast)
	}

	before := item.Clone()
	at = at.UTC()
	item.Status = domain.StatusScheduled
	item.ScheduledFor = &at
	return s.commit(ctx, before, item, actorID)
}

func (s *contentService) Transition(ctx context.Context, id, actorID string, to domain.Status) (*domain.ContentItem, error) {
	if !to.Valid() {
		return nil, common.InvalidArgument("unknown status", common.ErrInvalidStatus)
	}
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(item.Status, to) {
		return nil, common.InvalidArgument("cannot move from "+string(item.Status)+" to "+string(to), common.ErrInvalidStatus)
	}

	before := item.Clone()
	item.Status = to
	if to != domain.StatusScheduled {
		item.ScheduledFor = nil
	}
	if to == domain.StatusPublished && item.PublishedAt == nil {
		// 최초 발행 시각은 한 번만 기록
		publishedAt := s.now().UTC()
		item.PublishedAt = &publishedAt
	}
	return s.commit(ctx, before, item, actorID)
}

func (s *contentService) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	return s.load(ctx, id)
}

func (s *contentService) List(ctx context.Context, status domain.Status, page, limit int) ([]*domain.ContentItem, *common.Meta, error) {
	if !status.Valid() {
		return nil, nil, common.InvalidArgument("unknown status", common.ErrInvalidStatus)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := s.items.ListByStatus(ctx, status, page, limit)
	if err != nil {
		return nil, nil, common.Internal("failed to list items", err)
	}
	return items, &common.Meta{Page: page, PerPage: limit, Total: total}, nil
}

// RecordView is best-effort: a failure is logged and returned, and never
// blocks the read that caused it.
func (s *contentService) RecordView(ctx context.Context, id string) error {
	if err := s.items.IncrementViewCount(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("item_id", id).Msg("failed to record view")
		return err
	}
	return nil
}

func (s *contentService) load(ctx context.Context, id string) (*domain.ContentItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if errors.Is(err, common.ErrItemNotFound) {
		return nil, common.NotFound("item not found", err)
	}
	if err != nil {
		return nil, common.Internal("failed to load item", err)
	}
	return item, nil
}

// commit persists after and then hands the pair to the item-update subscribers.
func (s *contentService) commit(ctx context.Context, before domain.ContentItem, after *domain.ContentItem, actorID string) (*domain.ContentItem, error) {
	if actorID == "" {
		return nil, common.Unauthenticated("login required")
	}
	now := s.now().UTC()
	after.UpdatedAt = now

	s.ensureTerms(ctx, after, now)
	if err := s.items.Save(ctx, after); err != nil {
		return nil, common.Internal("failed to save item", err)
	}

	_ = s.bus.Publish(ctx, event.ItemUpdated{
		ID:         uuid.NewString(),
		Before:     before,
		After:      after.Clone(),
		Origin:     event.OriginEditor,
		ActorID:    actorID,
		OccurredAt: now,
	})
	return after, nil
}

// ensureTerms 참조된 term이 count 0으로 존재하도록 보장
func (s *contentService) ensureTerms(ctx context.Context, item *domain.ContentItem, now time.Time) {
	if err := s.terms.EnsureTerms(ctx, domain.TermCategory, item.CategoryIDs, now); err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("ensure category terms failed")
	}
	if err := s.terms.EnsureTerms(ctx, domain.TermTag, item.TagIDs, now); err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("ensure tag terms failed")
	}
}

func canTransition(from, to domain.Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
