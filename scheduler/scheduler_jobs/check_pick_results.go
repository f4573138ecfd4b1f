package scheduler_jobs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"picksBot/models"
	"picksBot/models/external"
	"picksBot/services/common"
	"picksBot/services/metrics"
	"picksBot/services/store"
)

// EventSource looks up a scoreboard event on the day it was played.
type EventSource interface {
	Event(ctx context.Context, sportTag, eventID string, day *time.Time) (external.ESPN_Event, error)
	Now() time.Time
}

// GradePick settles one leg against a final scoreboard. It reports false when
// the event is not final or the pick cannot be graded automatically.
func GradePick(pick models.Pick, event external.ESPN_Event) (models.PickResult, bool) {
	if !event.Completed() {
		return "", false
	}
	home, away := event.Home(), event.Away()
	if home == nil || away == nil {
		return "", false
	}
	homeScore, awayScore := home.Points(), away.Points()
	scoreDiff := homeScore - awayScore

	switch pick.PickType {
	case models.PickTypeMoneyline:
		switch pick.PickSide {
		case models.PickSideDraw:
			if scoreDiff == 0 {
				return models.PickResultWon, true
			}
			return models.PickResultLost, true
		case models.PickSideHome, models.PickSideAway:
			if scoreDiff == 0 {
				return models.PickResultPush, true
			}
			homeWon := scoreDiff > 0
			if homeWon == (pick.PickSide == models.PickSideHome) {
				return models.PickResultWon, true
			}
			return models.PickResultLost, true
		}

	case models.PickTypeSpread:
		line := 0.0
		if pick.Line != nil {
			line = *pick.Line
		}
		// lines are stored from the picked side's perspective
		homeSpread := line
		pickMargin := scoreDiff
		if pick.PickSide == models.PickSideAway {
			homeSpread = -line
			pickMargin = -scoreDiff
		}
		if float64(pickMargin)+line == 0 {
			return models.PickResultPush, true
		}
		if common.CalculateEntryWin(pick.PickSide, scoreDiff, homeSpread) {
			return models.PickResultWon, true
		}
		return models.PickResultLost, true

	case models.PickTypeTotal:
		if pick.Line == nil {
			return "", false
		}
		total := float64(homeScore + awayScore)
		switch {
		case total == *pick.Line:
			return models.PickResultPush, true
		case (total > *pick.Line) == (pick.PickSide == models.PickSideOver):
			return models.PickResultWon, true
		default:
			return models.PickResultLost, true
		}
	}

	return "", false
}

// SettlementWindow bounds how long after kick-off a leg is still looked up.
// Older legs stay pending.
const SettlementWindow = 7 * 24 * time.Hour

type eventKey struct {
	sport string
	id    string
}

// CheckPickResults grades pending legs whose games have finished. onSettled
// is called for every post whose status became final.
func CheckPickResults(ctx context.Context, st store.Store, games EventSource, m *metrics.Metrics, onSettled func(models.Post)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered in CheckPickResults", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic recovered in CheckPickResults: %v", r)
		}
	}()

	now := games.Now()
	picks, err := st.PendingPicks(ctx, now.Add(-SettlementWindow), now)
	if err != nil {
		return err
	}
	if len(picks) == 0 {
		return nil
	}

	events := make(map[eventKey]*external.ESPN_Event)
	for _, pick := range picks {
		key := eventKey{sport: pick.Sport, id: pick.EventID}
		event, seen := events[key]
		if !seen {
			day := pick.CommenceTime
			fetched, fetchErr := games.Event(ctx, pick.Sport, pick.EventID, &day)
			if fetchErr != nil {
				slog.Warn("error fetching event for settlement", "sport", pick.Sport, "event", pick.EventID, "error", fetchErr)
			} else {
				event = &fetched
			}
			events[key] = event
		}
		if event == nil {
			continue
		}

		result, ok := GradePick(pick, *event)
		if !ok {
			continue
		}

		post, settleErr := st.SettlePick(ctx, pick.ID, result)
		if settleErr != nil {
			slog.Error("error settling pick", "pick", pick.ID, "error", settleErr)
			continue
		}
		m.PicksSettled.WithLabelValues(string(result)).Inc()

		if onSettled != nil && post.Status != models.PostStatusPending {
			onSettled(*post)
		}
	}

	return nil
}
