package models

import (
	"fmt"
	"strconv"
)

func formatLine(line float64) string {
	s := strconv.FormatFloat(line, 'f', -1, 64)
	if line > 0 {
		return "+" + s
	}
	return s
}

// PickLabel renders a pick selection without needing a persisted Pick.
func PickLabel(t PickType, side PickSide, home, away string, line *float64, selection string) string {
	team := home
	if side == PickSideAway {
		team = away
	}

	switch t {
	case PickTypeMoneyline:
		if side == PickSideDraw {
			return fmt.Sprintf("Draw (%s vs %s)", home, away)
		}
		return fmt.Sprintf("%s ML", team)
	case PickTypeSpread:
		if line == nil {
			return fmt.Sprintf("%s spread", team)
		}
		return fmt.Sprintf("%s %s", team, formatLine(*line))
	case PickTypeTotal, PickTypePlayerProp:
		label := "Over"
		if side == PickSideUnder {
			label = "Under"
		}
		if t == PickTypePlayerProp && selection != "" {
			label = selection + " " + label
		}
		if line != nil {
			label = fmt.Sprintf("%s %s", label, strconv.FormatFloat(*line, 'f', -1, 64))
		}
		return label
	}
	return string(t)
}
