package external

import (
	"time"
)

type ESPN_Event struct {
	ID           string      `json:"id"`
	UID          string      `json:"uid"`
	Date         string      `json:"date"`
	Name         string      `json:"name"`
	ShortName    string      `json:"shortName"`
	Competitions []ESPN_Comp `json:"competitions"`
	Status       ESPN_Status `json:"status"`
}

type ESPN_Status struct {
	Clock        float64 `json:"clock"`
	DisplayClock string  `json:"displayClock"`
	Period       int     `json:"period"`
	Type         struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		State       string `json:"state"`
		Completed   bool   `json:"completed"`
		Description string `json:"description"`
		Detail      string `json:"detail"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

// ESPN dates omit seconds, e.g. "2024-11-06T00:30Z".
var espnDateLayouts = []string{"2006-01-02T15:04Z07:00", time.RFC3339}

// StartTime parses the event date; the zero time is returned when it cannot be parsed.
func (e ESPN_Event) StartTime() time.Time {
	for _, layout := range espnDateLayouts {
		if t, err := time.Parse(layout, e.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (e ESPN_Event) competitor(side string) *ESPN_Competitor {
	if len(e.Competitions) == 0 {
		return nil
	}
	for idx := range e.Competitions[0].Competitors {
		c := &e.Competitions[0].Competitors[idx]
		if c.HomeAway == side {
			return c
		}
	}
	return nil
}

func (e ESPN_Event) Home() *ESPN_Competitor { return e.competitor("home") }
func (e ESPN_Event) Away() *ESPN_Competitor { return e.competitor("away") }

func (e ESPN_Event) HomeName() string {
	if c := e.Home(); c != nil {
		return c.Team.DisplayName
	}
	return ""
}

func (e ESPN_Event) AwayName() string {
	if c := e.Away(); c != nil {
		return c.Team.DisplayName
	}
	return ""
}

// Completed reports whether the scoreboard marks the event final.
func (e ESPN_Event) Completed() bool {
	if e.Status.Type.Completed {
		return true
	}
	if len(e.Competitions) > 0 {
		return e.Competitions[0].Status.Type.Completed
	}
	return false
}

// Upcoming reports whether the event is still scheduled and starts after now.
func (e ESPN_Event) Upcoming(now time.Time) bool {
	state := e.Status.Type.State
	if state == "" && len(e.Competitions) > 0 {
		state = e.Competitions[0].Status.Type.State
	}
	return state == "pre" && e.StartTime().After(now)
}

// EmbeddedOdds returns the scoreboard's own odds line, if the event has one.
func (e ESPN_Event) EmbeddedOdds() *ESPN_Odds {
	if len(e.Competitions) == 0 || len(e.Competitions[0].Odds) == 0 {
		return nil
	}
	return &e.Competitions[0].Odds[0]
}
