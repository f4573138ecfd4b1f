// Package odds converts between American and decimal betting odds and prices parlays.
//
// Decimal values are carried as decimal.Decimal so that chained conversions
// (parlay legs) keep full precision until the final American rounding.
package odds

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidOddsFormat is returned for zero, non-numeric, or otherwise
// unconvertible odds.
var ErrInvalidOddsFormat = errors.New("invalid odds format")

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// AmericanToDecimal converts American odds (e.g. -110, +150) to decimal odds.
func AmericanToDecimal(american int) (decimal.Decimal, error) {
	if american == 0 {
		return decimal.Zero, fmt.Errorf("%w: american odds cannot be 0", ErrInvalidOddsFormat)
	}

	a := decimal.NewFromInt(int64(american))
	if american > 0 {
		return a.Div(hundred).Add(one), nil
	}

	return one.Add(hundred.Div(a.Abs())), nil
}

// DecimalToAmerican converts decimal odds back to American odds, rounding
// half-up to the nearest integer.
func DecimalToAmerican(d decimal.Decimal) (int, error) {
	if d.LessThanOrEqual(one) {
		return 0, fmt.Errorf("%w: decimal odds %s must be greater than 1", ErrInvalidOddsFormat, d.String())
	}

	if d.GreaterThanOrEqual(two) {
		return int(d.Sub(one).Mul(hundred).Round(0).IntPart()), nil
	}

	// 100/(d-1) is always positive here, so Round's half-away-from-zero is half-up.
	return -int(hundred.Div(d.Sub(one)).Round(0).IntPart()), nil
}

// ParseAmerican parses a user or provider supplied American odds string.
// Unparseable input is an error, never 0.
func ParseAmerican(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "+")
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidOddsFormat)
	}

	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidOddsFormat, s)
	}
	if v == 0 {
		return 0, fmt.Errorf("%w: american odds cannot be 0", ErrInvalidOddsFormat)
	}

	return v, nil
}

// FormatAmerican renders odds with an explicit sign for positive values.
func FormatAmerican(american int) string {
	if american > 0 {
		return fmt.Sprintf("+%d", american)
	}
	return strconv.Itoa(american)
}

// CombinedParlayOdds prices a parlay as the product of its legs' decimal odds.
// A nil result with a nil error means the legs do not form a parlay (fewer than two).
func CombinedParlayOdds(legs []int) (*int, error) {
	if len(legs) < 2 {
		return nil, nil
	}

	product, err := DecimalMultiplier(legs)
	if err != nil {
		return nil, err
	}

	combined, err := DecimalToAmerican(product)
	if err != nil {
		return nil, err
	}

	return &combined, nil
}

// DecimalMultiplier returns the product of the decimal odds of every leg.
func DecimalMultiplier(legs []int) (decimal.Decimal, error) {
	product := one
	for idx, leg := range legs {
		d, err := AmericanToDecimal(leg)
		if err != nil {
			return decimal.Zero, fmt.Errorf("leg %d: %w", idx+1, err)
		}
		product = product.Mul(d)
	}
	return product, nil
}

// Payout is the total return (stake included) of a winning single pick.
func Payout(stake decimal.Decimal, american int) (decimal.Decimal, error) {
	d, err := AmericanToDecimal(american)
	if err != nil {
		return decimal.Zero, err
	}
	return stake.Mul(d), nil
}

// ParlayPayout is the total return (stake included) of a winning parlay.
func ParlayPayout(stake decimal.Decimal, legs []int) (decimal.Decimal, error) {
	multiplier, err := DecimalMultiplier(legs)
	if err != nil {
		return decimal.Zero, err
	}
	return stake.Mul(multiplier), nil
}

// ImpliedProbability is the break-even win probability for the given odds.
func ImpliedProbability(american int) (decimal.Decimal, error) {
	d, err := AmericanToDecimal(american)
	if err != nil {
		return decimal.Zero, err
	}
	return one.Div(d), nil
}
