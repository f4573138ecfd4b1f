package config

import (
	"sort"
	"strings"
)

// Sport ties a sport tag to both providers' identifiers.
type Sport struct {
	Tag         string `yaml:"tag" json:"tag"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	ESPNPath    string `yaml:"espn_path" json:"-"`
	OddsKey     string `yaml:"odds_key" json:"-"`
	AllowsDraw  bool   `yaml:"allows_draw" json:"allows_draw"`
}

type SportRegistry struct {
	sports map[string]Sport
}

func DefaultSports() *SportRegistry {
	r := &SportRegistry{sports: make(map[string]Sport)}
	for _, s := range []Sport{
		{Tag: "nba", DisplayName: "NBA", ESPNPath: "basketball/nba", OddsKey: "basketball_nba"},
		{Tag: "nfl", DisplayName: "NFL", ESPNPath: "football/nfl", OddsKey: "americanfootball_nfl"},
		{Tag: "mlb", DisplayName: "MLB", ESPNPath: "baseball/mlb", OddsKey: "baseball_mlb"},
		{Tag: "nhl", DisplayName: "NHL", ESPNPath: "hockey/nhl", OddsKey: "icehockey_nhl"},
		{Tag: "ncaaf", DisplayName: "College Football", ESPNPath: "football/college-football", OddsKey: "americanfootball_ncaaf"},
		{Tag: "ncaab", DisplayName: "College Basketball", ESPNPath: "basketball/mens-college-basketball", OddsKey: "basketball_ncaab"},
		{Tag: "epl", DisplayName: "Premier League", ESPNPath: "soccer/eng.1", OddsKey: "soccer_epl", AllowsDraw: true},
		{Tag: "mls", DisplayName: "MLS", ESPNPath: "soccer/usa.1", OddsKey: "soccer_usa_mls", AllowsDraw: true},
	} {
		r.Put(s)
	}
	return r
}

// Put adds a sport or overrides the non-empty fields of an existing one.
func (r *SportRegistry) Put(s Sport) {
	s.Tag = strings.ToLower(strings.TrimSpace(s.Tag))
	if existing, ok := r.sports[s.Tag]; ok {
		if s.DisplayName == "" {
			s.DisplayName = existing.DisplayName
		}
		if s.ESPNPath == "" {
			s.ESPNPath = existing.ESPNPath
		}
		if s.OddsKey == "" {
			s.OddsKey = existing.OddsKey
		}
	}
	r.sports[s.Tag] = s
}

func (r *SportRegistry) Get(tag string) (Sport, bool) {
	s, ok := r.sports[strings.ToLower(strings.TrimSpace(tag))]
	return s, ok
}

// All returns every sport ordered by tag.
func (r *SportRegistry) All() []Sport {
	out := make([]Sport, 0, len(r.sports))
	for _, s := range r.sports {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
