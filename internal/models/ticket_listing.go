package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketListing is one marketplace listing observed for an event. Listings
// are immutable: reconciliation inserts new keys and deletes vanished keys,
// it never updates a row in place. The listing URL is the identity key
// within a source; price is metadata and may drift without creating a new
// row.
type TicketListing struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	EventID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_event_source_listing;index" json:"event_id"`
	Source     string          `gorm:"size:50;not null;uniqueIndex:idx_event_source_listing" json:"source"`
	ListingURL string          `gorm:"size:2000;not null;uniqueIndex:idx_event_source_listing" json:"listing_url"`
	Section    string          `gorm:"size:200" json:"section"`
	Row        string          `gorm:"size:50" json:"row,omitempty"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity   int             `gorm:"not null;default:1" json:"quantity"`
	RawData    string          `gorm:"type:text" json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName specifies the table name for TicketListing model
func (TicketListing) TableName() string {
	return "ticket_listings"
}
