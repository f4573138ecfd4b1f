package models

import "time"

type PickType string

const (
	PickTypeMoneyline  PickType = "moneyline"
	PickTypeSpread     PickType = "spread"
	PickTypeTotal      PickType = "total"
	PickTypePlayerProp PickType = "player-prop"
)

var PickTypes = []PickType{PickTypeMoneyline, PickTypeSpread, PickTypeTotal, PickTypePlayerProp}

type PickSide string

const (
	PickSideHome  PickSide = "home"
	PickSideAway  PickSide = "away"
	PickSideOver  PickSide = "over"
	PickSideUnder PickSide = "under"
	PickSideDraw  PickSide = "draw"
)

type PickResult string

const (
	PickResultPending PickResult = "pending"
	PickResultWon     PickResult = "won"
	PickResultLost    PickResult = "lost"
	PickResultPush    PickResult = "push"
)

// ValidSides lists the sides a pick type accepts. Draw is only offered on
// moneyline picks for sports that can end level.
func ValidSides(t PickType, allowsDraw bool) []PickSide {
	switch t {
	case PickTypeMoneyline:
		if allowsDraw {
			return []PickSide{PickSideHome, PickSideAway, PickSideDraw}
		}
		return []PickSide{PickSideHome, PickSideAway}
	case PickTypeSpread:
		return []PickSide{PickSideHome, PickSideAway}
	case PickTypeTotal, PickTypePlayerProp:
		return []PickSide{PickSideOver, PickSideUnder}
	}
	return nil
}

func IsValidSide(t PickType, s PickSide, allowsDraw bool) bool {
	for _, side := range ValidSides(t, allowsDraw) {
		if side == s {
			return true
		}
	}
	return false
}

func ParsePickType(s string) (PickType, bool) {
	for _, t := range PickTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Pick is one leg of a pick post. It is never updated after the post is
// created except for its settlement Result.
type Pick struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	PostID       uint   `gorm:"index"`
	Sport        string `gorm:"size:16"`
	EventID      string `gorm:"size:32; index"`
	HomeTeam     string `gorm:"size:128"`
	AwayTeam     string `gorm:"size:128"`
	CommenceTime time.Time
	PickType     PickType `gorm:"size:16"`
	PickSide     PickSide `gorm:"size:8"`
	// Spread or total line; nil for moneyline.
	Line *float64
	// Player name for player props.
	Selection     string `gorm:"size:128"`
	Odds          int
	OddsDefaulted bool
	Result        PickResult `gorm:"size:8; default:pending; index"`
}

// Label is a short human description, e.g. "Lakers -3.5" or "Over 221.5".
func (p Pick) Label() string {
	return PickLabel(p.PickType, p.PickSide, p.HomeTeam, p.AwayTeam, p.Line, p.Selection)
}
