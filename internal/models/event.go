package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryConcert is the default category for events whose source does not
// report one.
const CategoryConcert = "Concert"

// Event is a canonical, deduplicated real-world occurrence aggregated from
// one or more ticket marketplaces. There is no stable natural key across
// sources; uniqueness is maintained probabilistically by the matcher.
type Event struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"size:500;not null;index" json:"name"`
	Venue     string          `gorm:"size:500;not null" json:"venue"`
	Category  string          `gorm:"size:50;not null;default:Concert;index" json:"category"`
	Date      time.Time       `gorm:"not null;index" json:"date"`
	Links     []EventLink     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"links,omitempty"`
	Tickets   []TicketListing `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"tickets,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Event model
func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Category == "" {
		e.Category = CategoryConcert
	}
	return nil
}
