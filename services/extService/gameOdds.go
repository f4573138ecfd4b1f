package extService

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"picksBot/models/external"
	"picksBot/services/matching"
)

// ErrStaleGame means the game started too long ago for odds to exist. No
// request was made; callers treat it like "odds unavailable".
var ErrStaleGame = errors.New("game too old for odds lookup")

// LookupGameOdds finds the odds-provider record for a schedule-provider game.
// A nil event with a nil error means no odds are available for it.
func (c *Client) LookupGameOdds(ctx context.Context, sportTag string, game external.ESPN_Event) (*external.OddsAPI_Event, error) {
	commence := game.StartTime()
	if !matching.EligibleForOddsLookup(commence, c.now()) {
		c.metrics.RecordOddsLookup("stale")
		return nil, ErrStaleGame
	}

	from, to := matching.DayWindow(commence, c.location)
	candidates, err := c.Odds(ctx, sportTag, from, to)
	if err != nil {
		c.metrics.RecordOddsLookup("error")
		return nil, err
	}

	match, ok := matching.FindMatchingOddsRecord(game.HomeName(), game.AwayName(), candidates)
	if !ok {
		c.metrics.RecordOddsLookup("unmatched")
		return nil, nil
	}

	c.metrics.RecordOddsLookup("matched")
	return &match, nil
}

// GameDetails is an event plus its supplementary data. Odds and rosters are
// nil when unavailable.
type GameDetails struct {
	Event      external.ESPN_Event
	Odds       *external.OddsAPI_Event
	HomeRoster *external.ESPN_Roster
	AwayRoster *external.ESPN_Roster
}

// GameDetails fetches odds and both rosters concurrently and returns once all
// of them have completed. Failures of these supplementary calls are logged
// and the section is omitted.
func (c *Client) GameDetails(ctx context.Context, sportTag string, event external.ESPN_Event) (*GameDetails, error) {
	details := &GameDetails{Event: event}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		oddsEvent, err := c.LookupGameOdds(gctx, sportTag, event)
		if err != nil {
			if !errors.Is(err, ErrStaleGame) && !errors.Is(err, ErrNoOddsProvider) {
				slog.Warn("odds lookup failed", "sport", sportTag, "event", event.ID, "error", err)
			}
			return nil
		}
		details.Odds = oddsEvent
		return nil
	})
	g.Go(func() error {
		home, away := c.MatchupRosters(gctx, sportTag, event)
		details.HomeRoster = home
		details.AwayRoster = away
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return details, nil
}

// MatchupRosters fetches both teams' rosters concurrently. A roster that
// cannot be fetched is returned as nil.
func (c *Client) MatchupRosters(ctx context.Context, sportTag string, event external.ESPN_Event) (*external.ESPN_Roster, *external.ESPN_Roster) {
	var home, away *external.ESPN_Roster

	fetch := func(competitor *external.ESPN_Competitor, dst **external.ESPN_Roster) func() error {
		return func() error {
			if competitor == nil || competitor.Team.ID == "" {
				return nil
			}
			roster, err := c.Roster(ctx, sportTag, competitor.Team.ID)
			if err != nil {
				slog.Warn("roster fetch failed", "sport", sportTag, "team", competitor.Team.ID, "error", err)
				return nil
			}
			*dst = &roster
			return nil
		}
	}

	var g errgroup.Group
	g.Go(fetch(event.Home(), &home))
	g.Go(fetch(event.Away(), &away))
	_ = g.Wait()

	return home, away
}

// Now exposes the client clock so callers can apply the same staleness rules.
func (c *Client) Now() time.Time {
	return c.now()
}
