package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string
	DatabaseURL  string
	OddsAPIKey   string
	HTTPAddr     string
	CORSOrigins  []string
	Location     *time.Location
	LogLevel     slog.Level
	Sports       *SportRegistry
	// Extra team-name substitutions for the cross-provider matcher.
	TeamAbbreviations map[string]string
}

// FileConfig is the optional YAML file referenced by PICKS_CONFIG.
type FileConfig struct {
	Sports            []Sport           `yaml:"sports"`
	TeamAbbreviations map[string]string `yaml:"team_abbreviations"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		OddsAPIKey:   os.Getenv("ODDS_API_KEY"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		Sports:       DefaultSports(),
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN not set in environment variables")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment variables")
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "America/New_York"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if path := os.Getenv("PICKS_CONFIG"); path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Apply(fc)
	}

	return cfg, nil
}

// LoadFile parses the YAML overrides file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseFile(data)
}

func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, s := range fc.Sports {
		if strings.TrimSpace(s.Tag) == "" {
			return nil, fmt.Errorf("parse config: sport entry without a tag")
		}
	}
	return &fc, nil
}

// Apply merges a file config over the defaults.
func (c *Config) Apply(fc *FileConfig) {
	for _, s := range fc.Sports {
		c.Sports.Put(s)
	}
	if len(fc.TeamAbbreviations) > 0 && c.TeamAbbreviations == nil {
		c.TeamAbbreviations = make(map[string]string, len(fc.TeamAbbreviations))
	}
	for phrase, abbrev := range fc.TeamAbbreviations {
		c.TeamAbbreviations[phrase] = abbrev
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
