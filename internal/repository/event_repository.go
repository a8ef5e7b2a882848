package repository

import (
	"context"
	"time"

	"ticket-aggregator/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindUpcomingEvents retrieves every event whose date is at or after now.
// Past events are never match candidates.
func (r *Repository) FindUpcomingEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("date >= ?", now).
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent inserts a new canonical event
func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEventByID retrieves one event with its links and tickets preloaded
func (r *Repository) GetEventByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Links").
		Preload("Tickets").
		Where("id = ?", eventID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEventName replaces the stored display name. Only the name is ever
// corrected after creation; date and venue are immutable.
func (r *Repository) UpdateEventName(ctx context.Context, eventID uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("name", name).Error
}

// FindEventLink retrieves the link for (event, source), or nil when absent
func (r *Repository) FindEventLink(ctx context.Context, eventID uuid.UUID, source string) (*models.EventLink, error) {
	var link models.EventLink
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND source = ?", eventID, source).
		First(&link).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindEventLinks retrieves all marketplace links for an event
func (r *Repository) FindEventLinks(ctx context.Context, eventID uuid.UUID) ([]models.EventLink, error) {
	var links []models.EventLink
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// InsertEventLink attaches a marketplace link to an event
func (r *Repository) InsertEventLink(ctx context.Context, link *models.EventLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// FindTicketListings retrieves the stored listings for one event and source
func (r *Repository) FindTicketListings(ctx context.Context, eventID uuid.UUID, source string) ([]models.TicketListing, error) {
	var listings []models.TicketListing
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND source = ?", eventID, source).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// InsertTicketListings batch-inserts fresh listings
func (r *Repository) InsertTicketListings(ctx context.Context, listings []models.TicketListing) error {
	if len(listings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&listings).Error
}

// DeleteTicketListings removes listings by key for one event and source.
// Scoping to the source is what keeps one marketplace's sold-out signal
// from wiping another marketplace's inventory.
func (r *Repository) DeleteTicketListings(ctx context.Context, eventID uuid.UUID, source string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("event_id = ? AND source = ? AND listing_url IN ?", eventID, source, keys).
		Delete(&models.TicketListing{}).Error
}

// DeleteEvent removes an event and, through the cascade constraint, its
// links and listings
func (r *Repository) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", eventID).
		Delete(&models.Event{}).Error
}

// ListUpcomingEvents retrieves upcoming events with children preloaded, for
// the read API
func (r *Repository) ListUpcomingEvents(ctx context.Context, now time.Time, limit, offset int) ([]models.Event, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("date >= ?", now).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err = r.db.WithContext(ctx).
		Preload("Links").
		Preload("Tickets").
		Where("date >= ?", now).
		Order("date ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
