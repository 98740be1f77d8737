package service

import (
	"context"
	"errors"
	"time"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
	"github.com/damoang/tourlog-backend/internal/repository"
)

// TermService category/tag read and rename. Counts are owned by
// TaxonomyCounter and never written here.
type TermService interface {
	List(ctx context.Context, kind domain.TermKind) ([]*domain.TaxonomyTerm, error)
	Rename(ctx context.Context, kind domain.TermKind, id, name string) (*domain.TaxonomyTerm, error)
}

type termService struct {
	repo repository.TermRepository
	now  func() time.Time
}

// NewTermService creates a new TermService
func NewTermService(repo repository.TermRepository, now func() time.Time) TermService {
	if now == nil {
		now = time.Now
	}
	return &termService{repo: repo, now: now}
}

func (s *termService) List(ctx context.Context, kind domain.TermKind) ([]*domain.TaxonomyTerm, error) {
	if !kind.Valid() {
		return nil, common.InvalidArgument("kind must be category or tag", common.ErrInvalidInput)
	}
	terms, err := s.repo.FindByKind(ctx, kind)
	if err != nil {
		return nil, common.Internal("failed to list terms", err)
	}
	return terms, nil
}

func (s *termService) Rename(ctx context.Context, kind domain.TermKind, id, name string) (*domain.TaxonomyTerm, error) {
	if !kind.Valid() {
		return nil, common.InvalidArgument("kind must be category or tag", common.ErrInvalidInput)
	}
	if id == "" || name == "" {
		return nil, common.InvalidArgument("id and name are required", common.ErrInvalidInput)
	}

	if err := s.repo.Upsert(ctx, &domain.TaxonomyTerm{Kind: kind, ID: id, Name: name, UpdatedAt: s.now().UTC()}); err != nil {
		return nil, common.Internal("failed to save term", err)
	}
	term, err := s.repo.FindByKey(ctx, kind, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NotFound("term not found", err)
	}
	if err != nil {
		return nil, common.Internal("failed to load term", err)
	}
	return term, nil
}
