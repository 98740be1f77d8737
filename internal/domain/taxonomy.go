package domain

import "time"

// TermKind 분류 종류
type TermKind string

const (
	TermCategory TermKind = "category"
	TermTag      TermKind = "tag"
)

// Valid reports whether k is a known kind
func (k TermKind) Valid() bool { return k == TermCategory || k == TermTag }

// TaxonomyTerm is a category or tag aggregate. Count is the number of
// published items that reference the term and is maintained incrementally.
type TaxonomyTerm struct {
	Kind      TermKind  `gorm:"column:kind;primaryKey;type:varchar(20)" json:"kind"`
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(100)" json:"name"`
	Count     int64     `gorm:"column:count;default:0" json:"count"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (TaxonomyTerm) TableName() string { return "taxonomy_terms" }

// ProcessedEvent records that a consumer already applied an edit event, so
// redelivered events are skipped.
type ProcessedEvent struct {
	Consumer    string    `gorm:"column:consumer;primaryKey;type:varchar(50)" json:"consumer"`
	EventID     string    `gorm:"column:event_id;primaryKey;type:varchar(36)" json:"event_id"`
	ProcessedAt time.Time `gorm:"column:processed_at;autoCreateTime:false;index" json:"processed_at"`
}

func (ProcessedEvent) TableName() string { return "processed_events" }
