package repository

import (
	"context"
	"testing"
	"time"

	"ticket-aggregator/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Event{},
		&models.EventLink{},
		&models.TicketListing{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func TestFindUpcomingEventsFiltersPast(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	past := &models.Event{Name: "Gone", Venue: "Old Hall", Date: now.AddDate(0, 0, -7)}
	future := &models.Event{Name: "Soon", Venue: "New Hall", Date: now.AddDate(0, 0, 7)}
	for _, e := range []*models.Event{past, future} {
		if err := repo.CreateEvent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.FindUpcomingEvents(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Soon" {
		t.Errorf("expected only the upcoming event, got %+v", got)
	}
}

func TestUpdateEventName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	event := &models.Event{
		Name:  "Jamie xx (18+ Event)",
		Venue: "Aragon Ballroom",
		Date:  time.Date(2025, time.January, 17, 19, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateEvent(ctx, event); err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdateEventName(ctx, event.ID, "Jamie xx"); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetEventByID(ctx, event.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Jamie xx" {
		t.Errorf("name not updated: %q", got.Name)
	}
	// the rest of the row is untouched
	if !got.Date.Equal(event.Date) || got.Venue != event.Venue {
		t.Errorf("unexpected mutation: %+v", got)
	}
}

func TestEventDefaultsCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	event := &models.Event{
		Name:  "Someone",
		Venue: "Somewhere",
		Date:  time.Date(2025, time.January, 17, 19, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateEvent(ctx, event); err != nil {
		t.Fatal(err)
	}
	if event.Category != models.CategoryConcert {
		t.Errorf("expected default category %q, got %q", models.CategoryConcert, event.Category)
	}
}

func TestDeleteTicketListingsEmptyKeysIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	event := &models.Event{
		Name:  "Someone",
		Venue: "Somewhere",
		Date:  time.Date(2025, time.January, 17, 19, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateEvent(ctx, event); err != nil {
		t.Fatal(err)
	}
	listing := []models.TicketListing{{
		EventID:    event.ID,
		Source:     "stubhub",
		ListingURL: "https://sh.example/l/1",
		Quantity:   1,
	}}
	if err := repo.InsertTicketListings(ctx, listing); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteTicketListings(ctx, event.ID, "stubhub", nil); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.TicketListing{}).Count(&count)
	if count != 1 {
		t.Errorf("no-op delete removed rows, %d remain", count)
	}
}
