package pickService

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"picksBot/config"
	"picksBot/models"
	"picksBot/services/extService"
	"picksBot/services/odds"
)

// DefaultOdds is used when no bookmaker prices the chosen market.
const DefaultOdds = -110

var ErrInvalidTransition = errors.New("invalid pick builder transition")

type State int

const (
	NoGameSelected State = iota
	GameSelected
	PickTypeSelected
	PickSideSelected
	OddsResolved
)

func (s State) String() string {
	switch s {
	case NoGameSelected:
		return "no-game-selected"
	case GameSelected:
		return "game-selected"
	case PickTypeSelected:
		return "pick-type-selected"
	case PickSideSelected:
		return "pick-side-selected"
	case OddsResolved:
		return "odds-resolved"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Mode string

const (
	ModeSingle Mode = "single"
	ModeParlay Mode = "parlay"
)

// Builder walks one leg at a time from game selection to resolved odds and
// collects committed legs. It is not safe for concurrent use; Sessions
// serializes access.
type Builder struct {
	state State

	sport    config.Sport
	game     *extService.GameDetails
	pickType models.PickType
	side     models.PickSide

	// player props only
	selection string
	propLine  *float64

	resolved *models.Pick
	legs     []models.Pick
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) State() State {
	return b.state
}

func (b *Builder) Sport() config.Sport {
	return b.sport
}

func (b *Builder) Game() *extService.GameDetails {
	return b.game
}

func (b *Builder) PickType() models.PickType {
	return b.pickType
}

func (b *Builder) Resolved() *models.Pick {
	return b.resolved
}

func (b *Builder) Legs() []models.Pick {
	return b.legs
}

func (b *Builder) resetFrom(s State) {
	if s <= NoGameSelected {
		b.sport = config.Sport{}
		b.game = nil
	}
	if s <= GameSelected {
		b.pickType = ""
		b.selection = ""
		b.propLine = nil
	}
	if s <= PickTypeSelected {
		b.side = ""
	}
	b.resolved = nil
	b.state = s
}

// SelectGame is valid in any state and discards everything downstream of it.
func (b *Builder) SelectGame(sport config.Sport, game *extService.GameDetails) error {
	if game == nil {
		return fmt.Errorf("%w: no game data", ErrInvalidTransition)
	}
	b.resetFrom(NoGameSelected)
	b.sport = sport
	b.game = game
	b.state = GameSelected
	return nil
}

func (b *Builder) SelectType(t models.PickType) error {
	if b.state < GameSelected {
		return fmt.Errorf("%w: select a game before a pick type", ErrInvalidTransition)
	}
	if _, ok := models.ParsePickType(string(t)); !ok {
		return fmt.Errorf("%w: unknown pick type %q", ErrInvalidTransition, t)
	}
	b.resetFrom(GameSelected)
	b.pickType = t
	b.state = PickTypeSelected
	return nil
}

// SetProp names the player and line of a player-prop pick. It does not move
// the state and may be called again until a side is chosen.
func (b *Builder) SetProp(player string, line float64) error {
	if b.state != PickTypeSelected || b.pickType != models.PickTypePlayerProp {
		return fmt.Errorf("%w: no player-prop pick in progress", ErrInvalidTransition)
	}
	if player == "" {
		return fmt.Errorf("%w: player is required", ErrInvalidTransition)
	}
	b.selection = player
	b.propLine = &line
	return nil
}

// SelectSide records the side and resolves its odds from the fetched game
// data, so a successful call leaves the builder in OddsResolved.
func (b *Builder) SelectSide(side models.PickSide) error {
	if b.state < PickTypeSelected {
		return fmt.Errorf("%w: select a pick type before a side", ErrInvalidTransition)
	}
	if !models.IsValidSide(b.pickType, side, b.sport.AllowsDraw) {
		return fmt.Errorf("%w: %s is not a side of a %s pick", ErrInvalidTransition, side, b.pickType)
	}
	if b.pickType == models.PickTypePlayerProp && b.selection == "" {
		return fmt.Errorf("%w: choose a player before a side", ErrInvalidTransition)
	}
	b.resetFrom(PickTypeSelected)
	b.side = side
	b.state = PickSideSelected
	b.resolveOdds()
	return nil
}

func (b *Builder) resolveOdds() {
	event := b.game.Event
	pick := models.Pick{
		Sport:        b.sport.Tag,
		EventID:      event.ID,
		HomeTeam:     event.HomeName(),
		AwayTeam:     event.AwayName(),
		CommenceTime: event.StartTime(),
		PickType:     b.pickType,
		PickSide:     b.side,
		Selection:    b.selection,
		Result:       models.PickResultPending,
	}

	quote, ok := extService.QuoteFor(b.game, b.pickType, b.side)
	if ok {
		pick.Line = quote.Line
	}
	if ok && quote.Odds != 0 {
		pick.Odds = quote.Odds
	} else {
		pick.Odds = DefaultOdds
		pick.OddsDefaulted = true
	}
	if b.pickType == models.PickTypePlayerProp {
		pick.Line = b.propLine
	}

	b.resolved = &pick
	b.state = OddsResolved
}

// Commit appends the resolved leg and returns to NoGameSelected for the next one.
func (b *Builder) Commit() (models.Pick, error) {
	if b.state != OddsResolved || b.resolved == nil {
		return models.Pick{}, fmt.Errorf("%w: nothing to commit in state %s", ErrInvalidTransition, b.state)
	}
	pick := *b.resolved
	b.legs = append(b.legs, pick)
	b.resetFrom(NoGameSelected)
	return pick, nil
}

// RemoveLeg drops a committed leg by position.
func (b *Builder) RemoveLeg(idx int) error {
	if idx < 0 || idx >= len(b.legs) {
		return fmt.Errorf("%w: no leg %d", ErrInvalidTransition, idx+1)
	}
	b.legs = append(b.legs[:idx], b.legs[idx+1:]...)
	return nil
}

// StartedLeg returns the first committed or resolved leg whose game starts at
// or before now.
func (b *Builder) StartedLeg(now time.Time) (models.Pick, bool) {
	legs := b.legs
	if b.state == OddsResolved && b.resolved != nil {
		legs = append(legs[:len(legs):len(legs)], *b.resolved)
	}
	for _, leg := range legs {
		if !leg.CommenceTime.After(now) {
			return leg, true
		}
	}
	return models.Pick{}, false
}

func (b *Builder) Mode() Mode {
	if len(b.legs) > 1 {
		return ModeParlay
	}
	return ModeSingle
}

// CombinedOdds is nil until the builder holds a parlay.
func (b *Builder) CombinedOdds() (*int, error) {
	legs := make([]int, 0, len(b.legs))
	for _, leg := range b.legs {
		legs = append(legs, leg.Odds)
	}
	return odds.CombinedParlayOdds(legs)
}

// Post turns the committed legs into a pick post. A resolved but uncommitted
// leg is committed first.
func (b *Builder) Post(authorID uint, body string, stake decimal.NullDecimal) (*models.Post, error) {
	if stake.Valid && !stake.Decimal.IsPositive() {
		return nil, fmt.Errorf("stake must be positive")
	}
	if b.state == OddsResolved {
		if _, err := b.Commit(); err != nil {
			return nil, err
		}
	}
	if len(b.legs) == 0 {
		return nil, fmt.Errorf("%w: no picks to share", ErrInvalidTransition)
	}

	combined, err := b.CombinedOdds()
	if err != nil {
		return nil, err
	}

	picks := make([]models.Pick, len(b.legs))
	copy(picks, b.legs)

	return &models.Post{
		AuthorID:     authorID,
		Kind:         models.PostKindPick,
		Body:         body,
		CombinedOdds: combined,
		Stake:        stake,
		Status:       models.PostStatusPending,
		Picks:        picks,
	}, nil
}
