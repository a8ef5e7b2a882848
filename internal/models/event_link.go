package models

import (
	"time"

	"github.com/google/uuid"
)

// EventLink points at the buy/view page for an event on one marketplace.
// The unique index over (event_id, source) is the hard guarantee behind the
// reconciler's at-most-one-link-per-source rule.
type EventLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_source_link" json:"event_id"`
	Source    string    `gorm:"size:50;not null;uniqueIndex:idx_event_source_link" json:"source"`
	URL       string    `gorm:"size:2000;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for EventLink model
func (EventLink) TableName() string {
	return "event_links"
}
