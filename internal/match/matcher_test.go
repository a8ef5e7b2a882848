package match

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ticket-aggregator/internal/models"
)

func makeEvent(name, venue string, date time.Time) models.Event {
	return models.Event{
		ID:    uuid.New(),
		Name:  name,
		Venue: venue,
		Date:  date,
	}
}

func TestMatchExactShortCircuit(t *testing.T) {
	// the canonical cross-marketplace scenario: qualified name, partial
	// venue string, same wall-clock reading
	existing := makeEvent(
		"Jamie xx",
		"Byline Bank Aragon Ballroom",
		time.Date(2025, time.January, 17, 19, 0, 0, 0, time.UTC),
	)
	cand := Candidate{
		Name:  "Jamie xx (18+ Event)",
		Venue: "Aragon Ballroom",
		Date:  time.Date(2025, time.January, 17, 19, 0, 0, 0, time.UTC),
	}

	m := NewMatcher(DefaultThreshold)
	got, err := m.Match(cand, []models.Event{existing})
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a match, got none")
	}
	if got.ID != existing.ID {
		t.Errorf("matched wrong event: %v", got.ID)
	}
}

func TestMatchNoCrossVenueMerge(t *testing.T) {
	existing := makeEvent(
		"The National",
		"Madison Square Garden",
		time.Date(2025, time.July, 4, 20, 0, 0, 0, time.UTC),
	)
	cand := Candidate{
		Name:  "The National",
		Venue: "Red Rocks Amphitheatre",
		Date:  time.Date(2025, time.July, 4, 20, 0, 0, 0, time.UTC),
	}

	m := NewMatcher(DefaultThreshold)
	got, err := m.Match(cand, []models.Event{existing})
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got != nil {
		t.Errorf("identical name on the same day must not merge across venues, matched %v", got.ID)
	}
}

func TestMatchDoubleHeaderDisambiguation(t *testing.T) {
	day := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	matinee := makeEvent("Blue Man Group", "Briar Street Theatre", day.Add(15*time.Hour))

	m := NewMatcher(DefaultThreshold)

	// the 8pm candidate must not merge into the 3pm show
	evening := Candidate{
		Name:  "Blue Man Group",
		Venue: "Briar Street Theatre",
		Date:  day.Add(20 * time.Hour),
	}
	got, err := m.Match(evening, []models.Event{matinee})
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got != nil {
		t.Error("evening show matched the matinee")
	}

	// while the 3pm candidate still does
	same := Candidate{
		Name:  "Blue Man Group",
		Venue: "Briar Street Theatre",
		Date:  day.Add(15 * time.Hour),
	}
	got, err = m.Match(same, []models.Event{matinee})
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got == nil || got.ID != matinee.ID {
		t.Error("same-instant candidate failed to match")
	}
}

func TestMatchWeightedRanking(t *testing.T) {
	date := time.Date(2025, time.May, 1, 19, 30, 0, 0, time.UTC)
	near := makeEvent("Caribou", "Thalia Hall", date)
	far := makeEvent("Caribou", "Thalia Hall", date.AddDate(0, 0, 90))

	// substring name keeps the short circuit out of play
	cand := Candidate{
		Name:  "Caribou Live",
		Venue: "Thalia Hall",
		Date:  date,
	}

	m := NewMatcher(DefaultThreshold)
	got, err := m.Match(cand, []models.Event{far, near})
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected the same-day event to match")
	}
	if got.ID != near.ID {
		t.Errorf("ranked the distant date above the same-day event")
	}
}

func TestMatchDatePenaltyBelowThreshold(t *testing.T) {
	// a perfect name+venue hit two months off the candidate date must not
	// clear the threshold: 0.4 + 0.3 - 0.2 (capped penalty) = 0.5
	existing := makeEvent(
		"Caribou Live",
		"Thalia Hall",
		time.Date(2025, time.May, 1, 19, 30, 0, 0, time.UTC),
	)
	cand := Candidate{
		Name:  "Caribou Live",
		Venue: "Thalia Hall",
		Date:  time.Date(2025, time.July, 1, 19, 30, 0, 0, time.UTC),
	}

	m := NewMatcher(DefaultThreshold)
	got, err := m.Match(cand, []models.Event{existing})
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got != nil {
		t.Error("expected no match for a 61-day date mismatch")
	}
}

func TestMatchAmbiguousTie(t *testing.T) {
	day := time.Date(2025, time.September, 12, 0, 0, 0, 0, time.UTC)
	a := makeEvent("Phantom Regiment", "Carnegie Hall", day)
	b := makeEvent("Phantom Regiment", "Royal Albert Hall", day)

	// scraped venue is a fragment both stored venues contain, so both tie
	// at the top score while pointing at different places
	cand := Candidate{
		Name:  "Phantom Regiment Tour",
		Venue: "Hall",
		Date:  day,
	}

	m := NewMatcher(DefaultThreshold)
	_, err := m.Match(cand, []models.Event{a, b})
	var ambig *AmbiguousMatchError
	if !errors.As(err, &ambig) {
		t.Fatalf("expected AmbiguousMatchError, got %v", err)
	}
	if len(ambig.EventIDs) != 2 {
		t.Errorf("expected both events reported, got %v", ambig.EventIDs)
	}
}

func TestMatchDeterministicTieBreak(t *testing.T) {
	day := time.Date(2025, time.September, 12, 0, 0, 0, 0, time.UTC)
	a := makeEvent("Phantom Regiment", "The Symphony Hall", day)
	b := makeEvent("Phantom Regiment", "Symphony Hall Boston", day)

	cand := Candidate{
		Name:  "Phantom Regiment Tour",
		Venue: "Symphony Hall",
		Date:  day,
	}

	wantID := a.ID.String()
	if b.ID.String() < wantID {
		wantID = b.ID.String()
	}

	m := NewMatcher(DefaultThreshold)
	for i := 0; i < 5; i++ {
		got, err := m.Match(cand, []models.Event{a, b})
		if err != nil {
			t.Fatalf("Match returned error: %v", err)
		}
		if got == nil {
			t.Fatal("expected a match")
		}
		if got.ID.String() != wantID {
			t.Errorf("tie-break not deterministic: got %v, want %v", got.ID, wantID)
		}
	}
}

func TestMatchEmptySnapshot(t *testing.T) {
	m := NewMatcher(DefaultThreshold)
	got, err := m.Match(Candidate{Name: "Anyone", Venue: "Anywhere", Date: time.Now()}, nil)
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if got != nil {
		t.Error("match against an empty snapshot should create")
	}
}

func TestPreferredName(t *testing.T) {
	tests := []struct {
		current   string
		candidate string
		want      string
	}{
		{"Jamie xx", "Jamie xx (18+ Event)", "Jamie xx"},
		{"Jamie xx (18+ Event)", "Jamie xx", "Jamie xx"},
		{"Jamie xx Live", "Jamie xx", "Jamie xx"},
		{"Jamie xx", "xx", "Jamie xx"},
		{"Jamie xx (18+)", "Jamie xx [VIP]", "Jamie xx (18+)"},
		{"Jamie xx", "Jamie xx", "Jamie xx"},
		{"Jamie xx", "", "Jamie xx"},
	}
	for _, tt := range tests {
		if got := PreferredName(tt.current, tt.candidate); got != tt.want {
			t.Errorf("PreferredName(%q, %q) = %q, want %q", tt.current, tt.candidate, got, tt.want)
		}
	}
}
