package ton

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// 1 TON = 10^9 nanotons. All internal arithmetic is in nanotons;
// decimals only appear at the wire/display boundary.
const NanosPerTON = 1_000_000_000

var nanosPerTON = decimal.NewFromInt(NanosPerTON)

// Amount is a TON amount in nanotons.
type Amount int64

// FromTON converts a decimal TON value to nanotons.
// Sub-nanoton precision is rejected, not rounded.
func FromTON(d decimal.Decimal) (Amount, error) {
	n := d.Mul(nanosPerTON)
	if !n.Equal(n.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-nanoton precision", d)
	}
	return Amount(n.IntPart()), nil
}

// ParseTON parses a decimal TON string ("2.5") into nanotons.
func ParseTON(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse ton amount %q: %w", s, err)
	}
	return FromTON(d)
}

func (a Amount) TON() decimal.Decimal {
	return decimal.NewFromInt(int64(a)).Div(nanosPerTON)
}

func (a Amount) Nano() int64 { return int64(a) }

// String renders the amount in TON, e.g. "2.5".
func (a Amount) String() string { return a.TON().String() }

// Format renders the amount with two decimal places for display.
func (a Amount) Format() string { return a.TON().StringFixed(2) }

// MarshalJSON writes the amount as a JSON number in TON,
// matching the gateway wire format.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.TON().String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	v, err := ParseTON(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
