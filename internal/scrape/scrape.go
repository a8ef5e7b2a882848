package scrape

import (
	"context"

	"github.com/shopspring/decimal"
)

// Known marketplace identifiers. The matcher and reconcilers treat the
// source tag as opaque; these constants just keep spelling consistent
// between the scraping layer and the store.
const (
	SourceStubHub    = "stubhub"
	SourceVividSeats = "vividseats"
)

// CandidateEvent is the raw output of the extraction layer for one listing
// page: nothing is normalized yet and the date is still the source's free
// text. Candidates are consumed by the ingest service and discarded after
// reconciliation.
type CandidateEvent struct {
	Name     string
	DateText string
	Venue    string
	Location string
	Source   string
	Link     string
	Tickets  []CandidateTicket
}

// CandidateTicket is one scraped ticket listing attached to a candidate.
// Key is the listing URL (or the source's listing id when the URL is not
// stable); it is the only identity field across scrapes.
type CandidateTicket struct {
	Section  string
	Row      string
	Price    decimal.Decimal
	Quantity int
	Key      string
	RawData  string
}

// Source abstracts the browser/extraction layer that turns a search query
// into candidate events. Implementations live outside this module; tests
// supply fakes.
type Source interface {
	Name() string
	FetchEvents(ctx context.Context, query string) ([]CandidateEvent, error)
}
