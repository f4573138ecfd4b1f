package extService

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"picksBot/models/external"
)

const (
	oddsProvider   = "odds-api"
	oddsTimeLayout = "2006-01-02T15:04:05Z"
)

// Odds lists a sport's events with bookmaker odds whose commence time falls in [from, to).
func (c *Client) Odds(ctx context.Context, sportTag string, from, to time.Time) ([]external.OddsAPI_Event, error) {
	if c.oddsAPIKey == "" {
		return nil, ErrNoOddsProvider
	}

	sport, err := c.Sport(sportTag)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("odds rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("apiKey", c.oddsAPIKey)
	q.Set("regions", "us")
	q.Set("markets", "h2h,spreads,totals")
	q.Set("oddsFormat", "american")
	q.Set("dateFormat", "iso")
	q.Set("commenceTimeFrom", from.UTC().Format(oddsTimeLayout))
	// The provider treats the upper bound as inclusive.
	q.Set("commenceTimeTo", to.Add(-time.Second).UTC().Format(oddsTimeLayout))

	oddsUrl := fmt.Sprintf("%s/v4/sports/%s/odds?%s", c.oddsBaseURL, url.PathEscape(sport.OddsKey), q.Encode())

	var events []external.OddsAPI_Event
	if err := c.getJSON(ctx, oddsProvider, oddsUrl, &events); err != nil {
		return nil, err
	}

	return events, nil
}
