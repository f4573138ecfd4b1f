package odds

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		expected string
	}{
		{name: "Even money", american: 100, expected: "2"},
		{name: "Underdog +150", american: 150, expected: "2.5"},
		{name: "Favorite -200", american: -200, expected: "1.5"},
		{name: "Heavy favorite -400", american: -400, expected: "1.25"},
		{name: "Long shot +1000", american: 1000, expected: "11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToDecimal(tt.american)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("expected %s, got %s", tt.expected, got.String())
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, american := range []int{-110, -200, 150, 100, -105, 250, -150} {
		d, err := AmericanToDecimal(american)
		if err != nil {
			t.Fatalf("%d: unexpected error: %v", american, err)
		}
		back, err := DecimalToAmerican(d)
		if err != nil {
			t.Fatalf("%d: unexpected error: %v", american, err)
		}
		diff := back - american
		if diff < -1 || diff > 1 {
			t.Errorf("round trip of %d drifted to %d", american, back)
		}
		if back != american {
			t.Errorf("expected exact round trip for %d, got %d", american, back)
		}
	}
}

func TestDecimalToAmericanRoundsHalfUp(t *testing.T) {
	tests := []struct {
		decimal  string
		expected int
	}{
		{decimal: "2.645", expected: 165},
		{decimal: "3.6446", expected: 264},
		{decimal: "2.005", expected: 101},
		{decimal: "1.8", expected: -125},
		{decimal: "2", expected: 100},
	}

	for _, tt := range tests {
		got, err := DecimalToAmerican(decimal.RequireFromString(tt.decimal))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.decimal, err)
		}
		if got != tt.expected {
			t.Errorf("%s: expected %d, got %d", tt.decimal, tt.expected, got)
		}
	}
}

func TestInvalidOdds(t *testing.T) {
	if _, err := AmericanToDecimal(0); !errors.Is(err, ErrInvalidOddsFormat) {
		t.Errorf("expected ErrInvalidOddsFormat for 0, got %v", err)
	}
	if _, err := DecimalToAmerican(decimal.NewFromInt(1)); !errors.Is(err, ErrInvalidOddsFormat) {
		t.Errorf("expected ErrInvalidOddsFormat for 1.0, got %v", err)
	}
	if _, err := DecimalToAmerican(decimal.RequireFromString("0.5")); !errors.Is(err, ErrInvalidOddsFormat) {
		t.Errorf("expected ErrInvalidOddsFormat for 0.5, got %v", err)
	}
}

func TestParseAmerican(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{input: "-110", expected: -110},
		{input: "+150", expected: 150},
		{input: " 240 ", expected: 240},
		{input: "0", wantErr: true},
		{input: "", wantErr: true},
		{input: "EVEN", wantErr: true},
		{input: "-11o", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAmerican(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidOddsFormat) {
				t.Errorf("%q: expected ErrInvalidOddsFormat, got %v", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}

func TestCombinedParlayOdds(t *testing.T) {
	t.Run("Two legs at -110", func(t *testing.T) {
		combined, err := CombinedParlayOdds([]int{-110, -110})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if combined == nil || *combined != 264 {
			t.Errorf("expected +264, got %v", combined)
		}
		if FormatAmerican(*combined) != "+264" {
			t.Errorf("expected formatted +264, got %s", FormatAmerican(*combined))
		}
	})

	t.Run("Order does not matter", func(t *testing.T) {
		a, _ := CombinedParlayOdds([]int{150, -200, -110})
		b, _ := CombinedParlayOdds([]int{-110, 150, -200})
		if a == nil || b == nil || *a != *b {
			t.Errorf("expected equal prices, got %v and %v", a, b)
		}
	})

	t.Run("Single pick is not a parlay", func(t *testing.T) {
		combined, err := CombinedParlayOdds([]int{-110})
		if err != nil || combined != nil {
			t.Errorf("expected nil result, got %v, %v", combined, err)
		}
	})

	t.Run("Empty is not a parlay", func(t *testing.T) {
		combined, err := CombinedParlayOdds(nil)
		if err != nil || combined != nil {
			t.Errorf("expected nil result, got %v, %v", combined, err)
		}
	})

	t.Run("Invalid leg fails the whole parlay", func(t *testing.T) {
		combined, err := CombinedParlayOdds([]int{-110, 0, 150})
		if !errors.Is(err, ErrInvalidOddsFormat) {
			t.Errorf("expected ErrInvalidOddsFormat, got %v", err)
		}
		if combined != nil {
			t.Errorf("expected no partial result, got %d", *combined)
		}
	})
}

func TestPayouts(t *testing.T) {
	payout, err := Payout(decimal.NewFromInt(100), 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payout.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected 250, got %s", payout.String())
	}

	parlay, err := ParlayPayout(decimal.NewFromInt(10), []int{100, 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parlay.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 40, got %s", parlay.String())
	}

	p, err := ImpliedProbability(100)
	if err != nil || !p.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("expected 0.5, got %s (%v)", p.String(), err)
	}
}

func TestFormatAmerican(t *testing.T) {
	if FormatAmerican(-110) != "-110" {
		t.Errorf("expected -110, got %s", FormatAmerican(-110))
	}
	if FormatAmerican(120) != "+120" {
		t.Errorf("expected +120, got %s", FormatAmerican(120))
	}
}
