package domain

import "time"

// VersionSnapshot stores the pre-image of a content item at the moment it was
// superseded. Snapshots are never updated in place.
type VersionSnapshot struct {
	ID               string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	ItemID           string    `gorm:"column:item_id;type:varchar(36);index:idx_versions_item_created,priority:1" json:"item_id"`
	Title            string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Body             string    `gorm:"column:body;type:mediumtext" json:"body"`
	Excerpt          string    `gorm:"column:excerpt;type:text" json:"excerpt"`
	AuthorID         string    `gorm:"column:author_id;type:varchar(64)" json:"author_id"`
	ChangeNote       string    `gorm:"column:change_note;type:varchar(500)" json:"change_note"`
	StatusAtSnapshot Status    `gorm:"column:status_at_snapshot;type:varchar(20)" json:"status_at_snapshot"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime:false;index:idx_versions_item_created,priority:2" json:"created_at"`
}

func (VersionSnapshot) TableName() string { return "content_versions" }

// SnapshotOf captures the versioned fields of item
func SnapshotOf(item ContentItem) VersionSnapshot {
	return VersionSnapshot{
		ItemID:           item.ID,
		Title:            item.Title,
		Body:             item.Body,
		Excerpt:          item.Excerpt,
		AuthorID:         item.AuthorID,
		StatusAtSnapshot: item.Status,
	}
}
