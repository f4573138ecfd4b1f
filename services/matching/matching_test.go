package matching

import (
	"testing"
	"time"
)

type record struct {
	id   string
	home string
	away string
}

func (r record) HomeName() string { return r.home }
func (r record) AwayName() string { return r.away }

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Los Angeles Lakers", expected: "lalakers"},
		{input: "New York Knicks", expected: "nyknicks"},
		{input: "Golden State Warriors", expected: "gswarriors"},
		{input: "San Francisco 49ers", expected: "sf49ers"},
		{input: "  Boston   Celtics ", expected: "bostonceltics"},
		{input: "LA Clippers", expected: "laclippers"},
		{input: "St. Louis Blues", expected: "stlblues"},
	}

	for _, tt := range tests {
		if got := NormalizeTeamName(tt.input); got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestRegisterAbbreviation(t *testing.T) {
	defer ResetAbbreviations()

	if SameTeam("Brooklyn Nets", "BK Nets") {
		t.Fatal("expected no match before registering")
	}
	RegisterAbbreviation("Brooklyn", "bk")
	if !SameTeam("Brooklyn Nets", "BK Nets") {
		t.Error("expected match after registering abbreviation")
	}
}

func TestFindMatchingOddsRecord(t *testing.T) {
	candidates := []record{
		{id: "1", home: "Miami Heat", away: "Orlando Magic"},
		{id: "2", home: "Lakers", away: "Celtics"},
		{id: "3", home: "Lakers", away: "Celtics"},
	}

	got, ok := FindMatchingOddsRecord("Lakers", "Celtics", candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.id != "2" {
		t.Errorf("expected first match to win, got %s", got.id)
	}

	swapped := []record{{id: "9", home: "Celtics", away: "Lakers"}}
	if _, ok := FindMatchingOddsRecord("Lakers", "Celtics", swapped); ok {
		t.Error("expected swapped home/away not to match")
	}

	crossProvider := []record{{id: "4", home: "Los Angeles Lakers", away: "New York Knicks"}}
	got, ok = FindMatchingOddsRecord("los angeles lakers", "NEW YORK KNICKS", crossProvider)
	if !ok || got.id != "4" {
		t.Errorf("expected case-insensitive match, got %v %v", got, ok)
	}

	if _, ok := FindMatchingOddsRecord[record]("Lakers", "Celtics", nil); ok {
		t.Error("expected no match on empty candidates")
	}
}

func TestDayWindow(t *testing.T) {
	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2024-11-05 23:30 EST is 2024-11-06 04:30 UTC.
	commence := time.Date(2024, 11, 6, 4, 30, 0, 0, time.UTC)
	from, to := DayWindow(commence, est)

	wantFrom := time.Date(2024, 11, 5, 5, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 11, 6, 5, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) || !to.Equal(wantTo) {
		t.Errorf("expected [%v, %v), got [%v, %v)", wantFrom, wantTo, from, to)
	}
	if from.Location() != time.UTC || to.Location() != time.UTC {
		t.Error("expected UTC bounds")
	}
}

func TestEligibleForOddsLookup(t *testing.T) {
	now := time.Date(2024, 11, 6, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		commence time.Time
		expected bool
	}{
		{name: "Upcoming", commence: now.Add(3 * time.Hour), expected: true},
		{name: "Just started", commence: now.Add(-30 * time.Minute), expected: true},
		{name: "Exactly at buffer", commence: now.Add(-StaleGameBuffer), expected: true},
		{name: "Three hours ago", commence: now.Add(-3 * time.Hour), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EligibleForOddsLookup(tt.commence, now); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
