package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ticket-aggregator/internal/dates"
	"ticket-aggregator/internal/match"
	"ticket-aggregator/internal/models"
	"ticket-aggregator/internal/repository"
	"ticket-aggregator/internal/scrape"

	"github.com/google/uuid"
)

// Candidate outcome states reported in a SessionResult.
const (
	OutcomeMatched = "matched"
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
)

// CandidateOutcome records what happened to one scraped candidate.
type CandidateOutcome struct {
	Name    string    `json:"name"`
	Source  string    `json:"source"`
	Status  string    `json:"status"`
	Reason  string    `json:"reason,omitempty"`
	EventID uuid.UUID `json:"event_id,omitempty"`
}

// SessionResult is the structured report of one crawl session. The core
// returns it synchronously; whatever transport the caller wants to stream
// progress over is its own business.
type SessionResult struct {
	Matched         int                `json:"matched"`
	Created         int                `json:"created"`
	Skipped         int                `json:"skipped"`
	TicketsInserted int                `json:"tickets_inserted"`
	TicketsRetired  int                `json:"tickets_retired"`
	Outcomes        []CandidateOutcome `json:"outcomes"`
}

func (r *SessionResult) add(o CandidateOutcome) {
	switch o.Status {
	case OutcomeMatched:
		r.Matched++
	case OutcomeCreated:
		r.Created++
	case OutcomeSkipped:
		r.Skipped++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// IngestService turns raw scrape output into canonical events. Sources may
// fetch concurrently, but every match+reconcile sequence runs under one
// mutex: two sources racing to create the same real-world event would
// otherwise both see it missing and both insert it.
type IngestService struct {
	repo       *repository.Repository
	matcher    *match.Matcher
	reconciler *ReconcilerService
	now        func() time.Time

	mu sync.Mutex
}

// NewIngestService wires the ingest pipeline. nowFn anchors upcoming-event
// filtering and year inference; pass time.Now in production and a fixed
// clock in tests.
func NewIngestService(repo *repository.Repository, matcher *match.Matcher, nowFn func() time.Time) *IngestService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &IngestService{
		repo:       repo,
		matcher:    matcher,
		reconciler: NewReconcilerService(repo),
		now:        nowFn,
	}
}

// Reconciler exposes the link/ticket reconciler sharing this service's
// repository.
func (s *IngestService) Reconciler() *ReconcilerService {
	return s.reconciler
}

// IngestCandidates processes one source's scrape output. Candidates are
// handled strictly one after another so each fetch-decide-write sequence
// sees the previous candidate's writes. A failing candidate is logged,
// reported as skipped and does not abort the rest of the batch.
func (s *IngestService) IngestCandidates(ctx context.Context, source string, candidates []scrape.CandidateEvent) *SessionResult {
	result := &SessionResult{}

	for _, c := range candidates {
		outcome := s.ingestOne(ctx, source, c, result)
		result.add(outcome)
	}

	return result
}

func (s *IngestService) ingestOne(ctx context.Context, source string, c scrape.CandidateEvent, result *SessionResult) CandidateOutcome {
	outcome := CandidateOutcome{Name: c.Name, Source: source}

	date, err := dates.Normalize(c.DateText, source, s.now())
	if err != nil {
		log.Printf("Skipping candidate %q: %v", c.Name, err)
		outcome.Status = OutcomeSkipped
		outcome.Reason = err.Error()
		return outcome
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.FindUpcomingEvents(ctx, s.now())
	if err != nil {
		log.Printf("Skipping candidate %q: snapshot fetch failed: %v", c.Name, err)
		outcome.Status = OutcomeSkipped
		outcome.Reason = fmt.Sprintf("snapshot fetch failed: %v", err)
		return outcome
	}

	matched, err := s.matcher.Match(match.Candidate{
		Name:  c.Name,
		Venue: c.Venue,
		Date:  date,
	}, snapshot)
	if err != nil {
		var ambig *match.AmbiguousMatchError
		if errors.As(err, &ambig) {
			log.Printf("Candidate %q is ambiguous across %v, leaving for review", c.Name, ambig.EventIDs)
		} else {
			log.Printf("Skipping candidate %q: match failed: %v", c.Name, err)
		}
		outcome.Status = OutcomeSkipped
		outcome.Reason = err.Error()
		return outcome
	}

	if matched == nil {
		event := &models.Event{
			Name:     c.Name,
			Venue:    c.Venue,
			Category: models.CategoryConcert,
			Date:     date,
		}
		if err := s.repo.CreateEvent(ctx, event); err != nil {
			log.Printf("Skipping candidate %q: create failed: %v", c.Name, err)
			outcome.Status = OutcomeSkipped
			outcome.Reason = fmt.Sprintf("create failed: %v", err)
			return outcome
		}
		matched = event
		outcome.Status = OutcomeCreated
	} else {
		outcome.Status = OutcomeMatched
		if preferred := match.PreferredName(matched.Name, c.Name); preferred != matched.Name {
			if err := s.repo.UpdateEventName(ctx, matched.ID, preferred); err != nil {
				log.Printf("Name update failed for event %s: %v", matched.ID, err)
			}
		}
	}
	outcome.EventID = matched.ID

	if c.Link != "" {
		if _, err := s.reconciler.ReconcileLink(ctx, matched.ID, source, c.Link); err != nil {
			log.Printf("Link reconcile failed for event %s: %v", matched.ID, err)
		}
	}

	tickets, err := s.reconciler.ReconcileTickets(ctx, matched.ID, source, c.Tickets)
	if err != nil {
		log.Printf("Ticket reconcile failed for event %s: %v", matched.ID, err)
		return outcome
	}
	result.TicketsInserted += tickets.Inserted
	result.TicketsRetired += tickets.Retired

	return outcome
}

// RunSession fetches candidates from every source concurrently and funnels
// them through the serialized ingest path. One source failing to fetch does
// not stop the others; scheduling repeated sessions is the jobs package's
// business.
func (s *IngestService) RunSession(ctx context.Context, sources []scrape.Source, query string) (*SessionResult, error) {
	log.Printf("Starting ingest session for %q across %d sources", query, len(sources))

	type sourceBatch struct {
		source     string
		candidates []scrape.CandidateEvent
	}

	batches := make(chan sourceBatch, len(sources))
	errChan := make(chan error, len(sources))
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src scrape.Source) {
			defer wg.Done()
			candidates, err := src.FetchEvents(ctx, query)
			if err != nil {
				errChan <- fmt.Errorf("fetch from %s failed: %w", src.Name(), err)
				return
			}
			batches <- sourceBatch{source: src.Name(), candidates: candidates}
		}(src)
	}

	wg.Wait()
	close(batches)
	close(errChan)

	total := &SessionResult{}
	for batch := range batches {
		r := s.IngestCandidates(ctx, batch.source, batch.candidates)
		total.Matched += r.Matched
		total.Created += r.Created
		total.Skipped += r.Skipped
		total.TicketsInserted += r.TicketsInserted
		total.TicketsRetired += r.TicketsRetired
		total.Outcomes = append(total.Outcomes, r.Outcomes...)
	}

	var errs []error
	for err := range errChan {
		log.Printf("Session fetch error: %v", err)
		errs = append(errs, err)
	}
	if len(errs) == len(sources) && len(sources) > 0 {
		return total, fmt.Errorf("all sources failed: %v", errs)
	}

	log.Printf("Session complete: %d matched, %d created, %d skipped", total.Matched, total.Created, total.Skipped)
	return total, nil
}
