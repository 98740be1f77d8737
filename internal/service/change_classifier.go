package service

import (
	"reflect"
	"time"

	"github.com/damoang/tourlog-backend/internal/domain"
)

// IsContentChange reports whether after differs from before in any field
// other than updated_at, view_count and comment_count. Category and tag ids
// compare as sets; timestamps compare by instant.
func IsContentChange(before, after domain.ContentItem) bool {
	return !reflect.DeepEqual(contentView(before), contentView(after))
}

// contentView 무시 대상 필드를 지운 정규화 사본
func contentView(c domain.ContentItem) domain.ContentItem {
	out := c.Clone()
	out.UpdatedAt = time.Time{}
	out.ViewCount = 0
	out.CommentCount = 0
	out.CategoryIDs = out.CategoryIDs.Normalize()
	out.TagIDs = out.TagIDs.Normalize()
	out.CreatedAt = instant(out.CreatedAt)
	out.ScheduledFor = instantPtr(out.ScheduledFor)
	out.PublishedAt = instantPtr(out.PublishedAt)
	out.RestoredAt = instantPtr(out.RestoredAt)
	return out
}

func instant(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Round(0)
}

func instantPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := instant(*t)
	return &v
}
