package extService

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"picksBot/models/external"
)

const espnProvider = "espn"

// ErrGameNotFound is returned when a scoreboard does not contain the event.
var ErrGameNotFound = errors.New("unable to find game")

// Scoreboard lists a sport's events. A nil day means the provider's current day.
func (c *Client) Scoreboard(ctx context.Context, sportTag string, day *time.Time) ([]external.ESPN_Event, error) {
	sport, err := c.Sport(sportTag)
	if err != nil {
		return nil, err
	}

	scoreboardUrl := fmt.Sprintf("%s/apis/site/v2/sports/%s/scoreboard", c.espnBaseURL, sport.ESPNPath)
	if day != nil {
		q := url.Values{}
		q.Set("dates", day.In(c.location).Format("20060102"))
		scoreboardUrl += "?" + q.Encode()
	}

	var scoreboard external.ESPN_Scoreboard
	if err := c.getJSON(ctx, espnProvider, scoreboardUrl, &scoreboard); err != nil {
		return nil, err
	}

	return scoreboard.Events, nil
}

// Event finds a single event on the scoreboard of the given day.
func (c *Client) Event(ctx context.Context, sportTag, eventID string, day *time.Time) (external.ESPN_Event, error) {
	events, err := c.Scoreboard(ctx, sportTag, day)
	if err != nil {
		return external.ESPN_Event{}, err
	}

	for _, event := range events {
		if event.ID == eventID {
			return event, nil
		}
	}

	return external.ESPN_Event{}, fmt.Errorf("%w: %s", ErrGameNotFound, eventID)
}

// Roster fetches a team's roster.
func (c *Client) Roster(ctx context.Context, sportTag, teamID string) (external.ESPN_Roster, error) {
	sport, err := c.Sport(sportTag)
	if err != nil {
		return external.ESPN_Roster{}, err
	}

	rosterUrl := fmt.Sprintf("%s/apis/site/v2/sports/%s/teams/%s/roster", c.espnBaseURL, sport.ESPNPath, url.PathEscape(teamID))

	var roster external.ESPN_Roster
	if err := c.getJSON(ctx, espnProvider, rosterUrl, &roster); err != nil {
		return external.ESPN_Roster{}, err
	}

	return roster, nil
}
