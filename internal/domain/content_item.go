package domain

import (
	"sort"
	"time"
)

// Status 콘텐츠 발행 상태
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusPrivate   Status = "private"
	StatusTrash     Status = "trash"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusPrivate, StatusTrash:
		return true
	}
	return false
}

// ContentItem is a blog post or tour review under lifecycle control.
type ContentItem struct {
	ID           string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Title        string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Body         string     `gorm:"column:body;type:mediumtext" json:"body"`
	Excerpt      string     `gorm:"column:excerpt;type:text" json:"excerpt"`
	AuthorID     string     `gorm:"column:author_id;type:varchar(64);index" json:"author_id"`
	Status       Status     `gorm:"column:status;type:varchar(20);index:idx_items_status_schedule,priority:1;index:idx_items_status_updated,priority:1" json:"status"`
	ScheduledFor *time.Time `gorm:"column:scheduled_for;index:idx_items_status_schedule,priority:2" json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CategoryIDs  StringSet  `gorm:"column:category_ids;type:json;serializer:json" json:"category_ids"`
	TagIDs       StringSet  `gorm:"column:tag_ids;type:json;serializer:json" json:"tag_ids"`
	ViewCount    uint       `gorm:"column:view_count;default:0" json:"view_count"`
	CommentCount uint       `gorm:"column:comment_count;default:0" json:"comment_count"`
	// 버전 복원 시 기록
	RestoredFrom *string    `gorm:"column:restored_from;type:varchar(36)" json:"restored_from,omitempty"`
	RestoredBy   *string    `gorm:"column:restored_by;type:varchar(64)" json:"restored_by,omitempty"`
	RestoredAt   *time.Time `gorm:"column:restored_at" json:"restored_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime:false;index:idx_items_status_updated,priority:2" json:"updated_at"`
}

func (ContentItem) TableName() string { return "content_items" }

// Clone returns a deep copy so that before/after pairs never share state.
func (c ContentItem) Clone() ContentItem {
	out := c
	out.ScheduledFor = cloneTime(c.ScheduledFor)
	out.PublishedAt = cloneTime(c.PublishedAt)
	out.RestoredAt = cloneTime(c.RestoredAt)
	out.RestoredFrom = cloneString(c.RestoredFrom)
	out.RestoredBy = cloneString(c.RestoredBy)
	out.CategoryIDs = append(StringSet(nil), c.CategoryIDs...)
	out.TagIDs = append(StringSet(nil), c.TagIDs...)
	return out
}

// IsPublished reports whether the item is publicly visible
func (c ContentItem) IsPublished() bool { return c.Status == StatusPublished }

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringSet is an order-insensitive, duplicate-free set of ids.
// It is stored as a sorted JSON array.
type StringSet []string

// NewStringSet builds a normalized set from ids
func NewStringSet(ids ...string) StringSet {
	return StringSet(ids).Normalize()
}

// Normalize returns a sorted copy without duplicates or empty ids.
// An empty set normalizes to nil.
func (s StringSet) Normalize() StringSet {
	if len(s) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(s))
	out := make(StringSet, 0, len(s))
	for _, id := range s {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Contains reports membership
func (s StringSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Minus returns the ids in s that are not in other (s − other)
func (s StringSet) Minus(other StringSet) StringSet {
	var out StringSet
	for _, id := range s.Normalize() {
		if !other.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// Equal compares two sets ignoring order and duplicates
func (s StringSet) Equal(other StringSet) bool {
	a, b := s.Normalize(), other.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Transition is a committed before/after pair produced by a status sweep.
type Transition struct {
	Before ContentItem
	After  ContentItem
}
