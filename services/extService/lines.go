package extService

import (
	"picksBot/models"
	"picksBot/models/external"
)

var preferredBookmakers = []string{"draftkings", "fanduel", "betmgm", "williamhill_us", "bovada"}

// Quote is a price (and line, for spreads and totals) for one side of a market.
// Odds is 0 when only the line is known.
type Quote struct {
	Odds      int
	Line      *float64
	Bookmaker string
}

var pickMarkets = map[models.PickType]string{
	models.PickTypeMoneyline: "h2h",
	models.PickTypeSpread:    "spreads",
	models.PickTypeTotal:     "totals",
}

func outcomeName(event external.OddsAPI_Event, side models.PickSide) string {
	switch side {
	case models.PickSideHome:
		return event.HomeTeam
	case models.PickSideAway:
		return event.AwayTeam
	case models.PickSideDraw:
		return "Draw"
	case models.PickSideOver:
		return "Over"
	case models.PickSideUnder:
		return "Under"
	}
	return ""
}

func findOutcome(bookmaker external.OddsAPI_Bookmaker, marketKey, name string) *external.OddsAPI_Outcome {
	market := bookmaker.Market(marketKey)
	if market == nil {
		return nil
	}
	for idx := range market.Outcomes {
		if market.Outcomes[idx].Name == name {
			return &market.Outcomes[idx]
		}
	}
	return nil
}

// PickOddsAPIQuote prefers the listed bookmakers, then falls back to any
// bookmaker offering the outcome.
func PickOddsAPIQuote(event external.OddsAPI_Event, t models.PickType, side models.PickSide) (Quote, bool) {
	marketKey, ok := pickMarkets[t]
	if !ok {
		return Quote{}, false
	}
	name := outcomeName(event, side)

	for _, preferred := range preferredBookmakers {
		for _, bookmaker := range event.Bookmakers {
			if bookmaker.Key != preferred {
				continue
			}
			if outcome := findOutcome(bookmaker, marketKey, name); outcome != nil && outcome.Price != 0 {
				return Quote{Odds: outcome.Price, Line: outcome.Point, Bookmaker: bookmaker.Title}, true
			}
		}
	}

	for _, bookmaker := range event.Bookmakers {
		if outcome := findOutcome(bookmaker, marketKey, name); outcome != nil && outcome.Price != 0 {
			return Quote{Odds: outcome.Price, Line: outcome.Point, Bookmaker: bookmaker.Title}, true
		}
	}

	return Quote{}, false
}

// PickESPNQuote reads the scoreboard's embedded line. ESPN reports the spread
// from the home team's perspective.
func PickESPNQuote(line *external.ESPN_Odds, t models.PickType, side models.PickSide) (Quote, bool) {
	if line == nil {
		return Quote{}, false
	}
	q := Quote{Bookmaker: line.Provider.Name}

	switch t {
	case models.PickTypeMoneyline:
		switch side {
		case models.PickSideHome:
			q.Odds = line.HomeTeamOdds.MoneyLine
		case models.PickSideAway:
			q.Odds = line.AwayTeamOdds.MoneyLine
		}
		return q, q.Odds != 0
	case models.PickTypeSpread:
		if line.Spread == 0 {
			return Quote{}, false
		}
		spread := line.Spread
		q.Odds = line.HomeTeamOdds.SpreadOdds
		if side == models.PickSideAway {
			spread = -spread
			q.Odds = line.AwayTeamOdds.SpreadOdds
		}
		q.Line = &spread
		return q, true
	case models.PickTypeTotal:
		if line.OverUnder == 0 {
			return Quote{}, false
		}
		total := line.OverUnder
		q.Line = &total
		q.Odds = line.OverOdds
		if side == models.PickSideUnder {
			q.Odds = line.UnderOdds
		}
		return q, true
	}

	return Quote{}, false
}

// QuoteFor resolves a quote from already-fetched game data, preferring the
// odds provider over the scoreboard's embedded line.
func QuoteFor(details *GameDetails, t models.PickType, side models.PickSide) (Quote, bool) {
	if details == nil {
		return Quote{}, false
	}
	if details.Odds != nil {
		if q, ok := PickOddsAPIQuote(*details.Odds, t, side); ok {
			return q, true
		}
	}
	return PickESPNQuote(details.Event.EmbeddedOdds(), t, side)
}
