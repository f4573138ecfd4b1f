package config

import (
	"testing"
)

func TestParseFile(t *testing.T) {
	data := []byte(`
sports:
  - tag: NBA
    display_name: National Basketball Association
  - tag: wnba
    display_name: WNBA
    espn_path: basketball/wnba
    odds_key: basketball_wnba
team_abbreviations:
  brooklyn: bk
`)

	fc, err := ParseFile(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := &Config{Sports: DefaultSports()}
	cfg.Apply(fc)

	nba, ok := cfg.Sports.Get("nba")
	if !ok {
		t.Fatal("expected nba to exist")
	}
	if nba.DisplayName != "National Basketball Association" {
		t.Errorf("expected overridden display name, got %s", nba.DisplayName)
	}
	if nba.ESPNPath != "basketball/nba" || nba.OddsKey != "basketball_nba" {
		t.Errorf("expected provider keys to be kept, got %+v", nba)
	}

	wnba, ok := cfg.Sports.Get("WNBA")
	if !ok || wnba.OddsKey != "basketball_wnba" {
		t.Errorf("expected wnba to be added, got %+v", wnba)
	}

	if cfg.TeamAbbreviations["brooklyn"] != "bk" {
		t.Errorf("expected abbreviation to be loaded, got %v", cfg.TeamAbbreviations)
	}
}

func TestParseFileRejectsMissingTag(t *testing.T) {
	if _, err := ParseFile([]byte("sports:\n  - display_name: Nope\n")); err == nil {
		t.Error("expected error for sport without tag")
	}
}

func TestDefaultSportsAllowsDraw(t *testing.T) {
	reg := DefaultSports()
	epl, _ := reg.Get("epl")
	nba, _ := reg.Get("nba")
	if !epl.AllowsDraw || nba.AllowsDraw {
		t.Errorf("expected only soccer to allow draws, got epl=%v nba=%v", epl.AllowsDraw, nba.AllowsDraw)
	}
	all := reg.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Tag > all[i].Tag {
			t.Fatalf("expected sorted tags, got %s before %s", all[i-1].Tag, all[i].Tag)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/picks.db")
	t.Setenv("CORS_ORIGINS", "https://picks.example, ,http://localhost:5173")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PICKS_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://localhost:5173" {
		t.Errorf("expected two trimmed origins, got %v", cfg.CORSOrigins)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default HTTP address, got %s", cfg.HTTPAddr)
	}
	if cfg.LogLevel.String() != "DEBUG" {
		t.Errorf("expected debug level, got %s", cfg.LogLevel)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/picks.db")

	if _, err := Load(); err == nil {
		t.Error("expected error without DISCORD_BOT_TOKEN")
	}
}
