// Package match decides whether a freshly scraped candidate event refers to
// an already-known event. There is no stable identifier shared across
// marketplaces, so the decision is a weighted fuzzy score over name, venue
// and date proximity, tuned to avoid both false merges (polluting one event
// with another's tickets) and false splits (duplicate rows for one show).
package match

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ticket-aggregator/internal/dates"
	"ticket-aggregator/internal/models"
)

// Score weights. Name and venue are the only signals that survive across
// marketplaces more or less verbatim; a matching day confirms, a
// mismatched day penalizes proportionally to the distance but is capped so
// one wrong-day reading cannot veto an overwhelming name+venue match.
const (
	nameWeight     = 0.4
	venueWeight    = 0.3
	dateBonus      = 0.3
	perDayPenalty  = 0.02
	maxDatePenalty = 0.2

	// minVenueScore gates every merge, short-circuit or ranked. Two venues
	// below it are different places no matter how well the names agree:
	// merging across venues pollutes one event with another's tickets,
	// which is the one unrecoverable failure here. 0.6 is too low — the
	// character-overlap of "Madison Square Garden" and "Red Rocks
	// Amphitheatre" happens to reach 0.615.
	minVenueScore = 0.65

	// DefaultThreshold is the minimum weighted score to accept a match.
	// The deployments this replaces ran 0.7 and 0.8 in different code
	// paths; 0.75 splits the difference and is configurable via
	// MATCH_THRESHOLD.
	DefaultThreshold = 0.75
)

// Candidate is a scraped event whose date has already been normalized.
type Candidate struct {
	Name  string
	Venue string
	Date  time.Time
}

// AmbiguousMatchError is returned when several stored events tie at the top
// score but point at materially different venues. Guessing here risks a
// false merge, so the candidate is surfaced for review instead.
type AmbiguousMatchError struct {
	Name     string
	EventIDs []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match for %q across events %v", e.Name, e.EventIDs)
}

// Matcher ranks stored events against a candidate.
type Matcher struct {
	threshold float64
}

// NewMatcher builds a matcher with the given acceptance threshold; values
// outside (0,1] fall back to DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

type scoredEvent struct {
	event      *models.Event
	score      float64
	nameScore  float64
	venueScore float64
	sameDay    bool
}

// Match returns the stored event the candidate refers to, or nil when the
// candidate is a new event. The caller supplies the snapshot of events to
// match against, already filtered to upcoming ones.
func (m *Matcher) Match(c Candidate, events []models.Event) (*models.Event, error) {
	var (
		scored []scoredEvent
		exact  *scoredEvent
	)

	for i := range events {
		ev := &events[i]
		ns := Similarity(BaseName(ev.Name), BaseName(c.Name))
		vs := Similarity(ev.Venue, c.Venue)
		if vs < minVenueScore {
			continue
		}
		sameDay := dates.SameDay(ev.Date, c.Date)

		// Same artist and venue on the same day can still be two shows
		// (matinee and evening). When both sides carry a time of day,
		// require agreement down to the minute before considering the
		// event at all.
		if sameDay && ns == 1.0 &&
			hasClock(ev.Date) && hasClock(c.Date) && !dates.SameInstant(ev.Date, c.Date) {
			continue
		}

		dateComponent := dateBonus
		if !sameDay {
			dayDiff := math.Abs(ev.Date.Sub(c.Date).Hours()) / 24
			dateComponent = math.Max(-maxDatePenalty, -perDayPenalty*dayDiff)
		}

		s := scoredEvent{
			event:      ev,
			score:      nameWeight*ns + venueWeight*vs + dateComponent,
			nameScore:  ns,
			venueScore: vs,
			sameDay:    sameDay,
		}

		// Obviously-correct match: identical base name on the right day
		// with a plausible venue. Short-circuits the weighted ranking so
		// a venue-name quirk can never reject it.
		if ns == 1.0 && sameDay {
			if exact == nil || s.score > exact.score ||
				(s.score == exact.score && lessID(s.event, exact.event)) {
				exact = &s
			}
		}

		scored = append(scored, s)
	}

	if exact != nil {
		return exact.event, nil
	}

	var survivors []scoredEvent
	for _, s := range scored {
		if s.score > m.threshold {
			survivors = append(survivors, s)
		}
	}
	if len(survivors) == 0 {
		return nil, nil
	}

	best := survivors[0]
	var tied []scoredEvent
	for _, s := range survivors[1:] {
		if s.score > best.score {
			best = s
		}
	}
	for _, s := range survivors {
		if s.score == best.score {
			tied = append(tied, s)
		}
	}

	if len(tied) > 1 && materiallyDifferent(tied) {
		ambig := &AmbiguousMatchError{Name: c.Name}
		for _, s := range tied {
			ambig.EventIDs = append(ambig.EventIDs, s.event.ID.String())
		}
		return nil, ambig
	}

	// deterministic tie-break: lexicographically lowest event ID
	for _, s := range tied {
		if lessID(s.event, best.event) {
			best = s
		}
	}
	return best.event, nil
}

// materiallyDifferent reports whether any two tied events sit at venues
// that do not resemble each other; such a tie must not be broken by guess.
func materiallyDifferent(tied []scoredEvent) bool {
	for i := 0; i < len(tied); i++ {
		for j := i + 1; j < len(tied); j++ {
			if Similarity(tied[i].event.Venue, tied[j].event.Venue) < 0.6 {
				return true
			}
		}
	}
	return false
}

func lessID(a, b *models.Event) bool {
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

// hasClock reports whether a normalized date carries a time of day.
// Date-only dialects normalize to midnight, which we treat as "time
// unknown" rather than a literal 00:00 show.
func hasClock(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0
}

// PreferredName picks the canonical display name after a merge. Names
// without parenthetical or bracket qualifiers win over names with them;
// when both are clean the shorter one wins, unless the challenger is a
// degenerate short string. Over repeated crawls this converges the stored
// name to the unqualified form instead of accumulating source suffixes.
func PreferredName(current, candidate string) string {
	if candidate == "" || candidate == current {
		return current
	}
	curClean := isCleanName(current)
	candClean := isCleanName(candidate)

	switch {
	case curClean && !candClean:
		return current
	case candClean && !curClean:
		return candidate
	case curClean && candClean:
		if len(candidate) < len(current) && len(candidate) > 3 {
			return candidate
		}
		return current
	default:
		// both qualified: keep what we have
		return current
	}
}

func isCleanName(s string) bool {
	return !strings.ContainsAny(s, "([")
}
