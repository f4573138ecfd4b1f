// Package matching correlates game records from the schedule provider with
// records from the odds provider, which name teams differently.
package matching

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StaleGameBuffer is how long after commence time a game is still eligible
// for an odds lookup.
const StaleGameBuffer = 2 * time.Hour

// Matchup is anything with provider-named home and away teams.
type Matchup interface {
	HomeName() string
	AwayName() string
}

// defaultAbbreviations is a hard-coded allow-list of multi-word city
// substitutions. It under-matches any variant not listed here.
var defaultAbbreviations = map[string]string{
	"los angeles":   "la",
	"new york":      "ny",
	"san francisco": "sf",
	"golden state":  "gs",
	"new orleans":   "no",
	"oklahoma city": "okc",
	"san antonio":   "sa",
	"tampa bay":     "tb",
	"kansas city":   "kc",
	"new england":   "ne",
	"green bay":     "gb",
	"las vegas":     "lv",
	"st. louis":     "stl",
}

var (
	abbrevMu      sync.RWMutex
	abbreviations = cloneTable(defaultAbbreviations)
	lower         = cases.Lower(language.Und)
)

func cloneTable(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// RegisterAbbreviation adds or replaces a substitution in the table.
func RegisterAbbreviation(phrase, abbrev string) {
	phrase = strings.TrimSpace(lower.String(phrase))
	if phrase == "" {
		return
	}

	abbrevMu.Lock()
	defer abbrevMu.Unlock()
	abbreviations[phrase] = lower.String(strings.TrimSpace(abbrev))
}

// ResetAbbreviations restores the built-in table.
func ResetAbbreviations() {
	abbrevMu.Lock()
	defer abbrevMu.Unlock()
	abbreviations = cloneTable(defaultAbbreviations)
}

// NormalizeTeamName lower-cases a team name, applies the abbreviation table
// and strips whitespace. Nothing else is normalized.
func NormalizeTeamName(name string) string {
	n := lower.String(name)

	abbrevMu.RLock()
	phrases := make([]string, 0, len(abbreviations))
	for phrase := range abbreviations {
		phrases = append(phrases, phrase)
	}
	// Longest phrase first so overlapping entries apply deterministically.
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	for _, phrase := range phrases {
		n = strings.ReplaceAll(n, phrase, abbreviations[phrase])
	}
	abbrevMu.RUnlock()

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, n)
}

// SameTeam reports whether two provider names normalize to the same team.
func SameTeam(a, b string) bool {
	return NormalizeTeamName(a) == NormalizeTeamName(b)
}

// FindMatchingOddsRecord returns the first candidate whose home and away
// teams both match the target. Swapped home/away is not a match.
func FindMatchingOddsRecord[T Matchup](targetHome, targetAway string, candidates []T) (T, bool) {
	home := NormalizeTeamName(targetHome)
	away := NormalizeTeamName(targetAway)

	for _, c := range candidates {
		if NormalizeTeamName(c.HomeName()) == home && NormalizeTeamName(c.AwayName()) == away {
			return c, true
		}
	}

	var zero T
	return zero, false
}

// DayWindow returns the UTC bounds of the local calendar day containing t.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// EligibleForOddsLookup is false once a game started more than StaleGameBuffer ago.
func EligibleForOddsLookup(commence, now time.Time) bool {
	return !commence.Before(now.Add(-StaleGameBuffer))
}
