package services

import (
	"context"
	"fmt"

	"ticket-aggregator/internal/models"
	"ticket-aggregator/internal/repository"
	"ticket-aggregator/internal/scrape"

	"github.com/google/uuid"
)

// ReconcilerService keeps an event's marketplace links and ticket inventory
// in step with the latest scrape of each source.
type ReconcilerService struct {
	repo *repository.Repository
}

func NewReconcilerService(repo *repository.Repository) *ReconcilerService {
	return &ReconcilerService{repo: repo}
}

// ReconcileLink idempotently attaches a (source, url) link to an event and
// returns the URL that is stored afterwards. At most one link per
// (event, source) ever exists; a stale URL is not replaced here — callers
// that need that must delete and re-reconcile explicitly.
func (s *ReconcilerService) ReconcileLink(ctx context.Context, eventID uuid.UUID, source, url string) (string, error) {
	existing, err := s.repo.FindEventLink(ctx, eventID, source)
	if err != nil {
		return "", fmt.Errorf("failed to look up event link: %w", err)
	}
	if existing != nil {
		return existing.URL, nil
	}

	link := &models.EventLink{
		EventID: eventID,
		Source:  source,
		URL:     url,
	}
	if err := s.repo.InsertEventLink(ctx, link); err != nil {
		return "", fmt.Errorf("failed to insert event link: %w", err)
	}
	return url, nil
}

// TicketReconcileResult reports what one inventory pass changed.
type TicketReconcileResult struct {
	Inserted int
	Retired  int
}

// ReconcileTickets synchronizes one source's listings for one event against
// a fresh scrape. Listings whose key is new are inserted; stored listings
// whose key no longer appears are deleted — that disappearance is the
// sold-out/taken-down signal. Rows are never updated in place: the listing
// URL is the identity key and price is treated as metadata, so a price
// drift on a stable key changes nothing. Listings belonging to other
// sources are untouched.
func (s *ReconcilerService) ReconcileTickets(ctx context.Context, eventID uuid.UUID, source string, fresh []scrape.CandidateTicket) (TicketReconcileResult, error) {
	var result TicketReconcileResult

	existing, err := s.repo.FindTicketListings(ctx, eventID, source)
	if err != nil {
		return result, fmt.Errorf("failed to fetch stored listings: %w", err)
	}

	existingKeys := make(map[string]bool, len(existing))
	for _, l := range existing {
		existingKeys[l.ListingURL] = true
	}

	freshKeys := make(map[string]bool, len(fresh))
	var toInsert []models.TicketListing
	for _, t := range fresh {
		if t.Key == "" || freshKeys[t.Key] {
			continue
		}
		freshKeys[t.Key] = true
		if existingKeys[t.Key] {
			continue
		}
		toInsert = append(toInsert, models.TicketListing{
			EventID:    eventID,
			Source:     source,
			ListingURL: t.Key,
			Section:    t.Section,
			Row:        t.Row,
			Price:      t.Price,
			Quantity:   t.Quantity,
			RawData:    t.RawData,
		})
	}

	if err := s.repo.InsertTicketListings(ctx, toInsert); err != nil {
		return result, fmt.Errorf("failed to insert listings: %w", err)
	}
	result.Inserted = len(toInsert)

	var stale []string
	for _, l := range existing {
		if !freshKeys[l.ListingURL] {
			stale = append(stale, l.ListingURL)
		}
	}
	if err := s.repo.DeleteTicketListings(ctx, eventID, source, stale); err != nil {
		return result, fmt.Errorf("failed to retire listings: %w", err)
	}
	result.Retired = len(stale)

	return result, nil
}
