package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/domain"
)

func TestTermService_ListRejectsUnknownKind(t *testing.T) {
	repo := new(mockTermRepo)
	svc := NewTermService(repo, nil)

	_, err := svc.List(context.Background(), domain.TermKind("region"))
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
	repo.AssertNotCalled(t, "FindByKind", mock.Anything, mock.Anything)
}

func TestTermService_ListSeededCategories(t *testing.T) {
	e := newEngine(t)
	svc := NewTermService(e.terms, e.clock.Now)

	terms, err := svc.List(context.Background(), domain.TermCategory)
	require.NoError(t, err)
	assert.NotEmpty(t, terms)
}

func TestTermService_RenameKeepsCount(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	svc := NewTermService(e.terms, e.clock.Now)

	created := createDraft(t, e, "post", "jeju")
	_, err := e.content.Transition(ctx, created.ID, "editor-1", domain.StatusPublished)
	require.NoError(t, err)

	term, err := svc.Rename(ctx, domain.TermCategory, "jeju", "제주")
	require.NoError(t, err)
	assert.Equal(t, "제주", term.Name)
	assert.Equal(t, int64(1), term.Count)
}
