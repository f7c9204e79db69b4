// Package money holds exact two-decimal monetary amounts.
//
// Amounts are stored as int64 minor units (cents) so that commission splits
// never drift: commission + vendor share always equals the rounded price.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrOverflow      = errors.New("amount out of range")
)

// Amount is a monetary value in minor units (1/100).
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

const maxWhole = (math.MaxInt64 - 99) / 100

// Parse reads a plain decimal string ("95.5", "100.005") and rounds it half
// away from zero to two decimals.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || whole > maxWhole {
		return 0, ErrOverflow
	}

	frac := fracPart + "000"
	cents := int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	v := whole*100 + cents
	if frac[2] >= '5' {
		v++
	}
	if neg {
		v = -v
	}
	return Amount(v), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromFloat converts through the shortest decimal representation of f, so
// 1.005 becomes 1.01 rather than falling victim to binary rounding.
func FromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return Parse(strconv.FormatFloat(f, 'f', -1, 64))
}

// FromMinor wraps a count of minor units.
func FromMinor(units int64) Amount {
	return Amount(units)
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 {
	return int64(a)
}

// MulBps returns a * bps / 10000 rounded half away from zero. bps must lie
// in [-10000, 10000]; the result is then never larger than a in magnitude,
// so it cannot overflow for any Amount.
func (a Amount) MulBps(bps int64) Amount {
	v := int64(a)
	neg := (v < 0) != (bps < 0)
	if v < 0 {
		v = -v
	}
	if bps < 0 {
		bps = -bps
	}

	// Splitting on 10000 keeps both products inside int64.
	q, r := v/10000, v%10000
	out := q*bps + (r*bps+5000)/10000
	if neg {
		out = -out
	}
	return Amount(out)
}

func (a Amount) Sub(b Amount) Amount {
	return a - b
}

func (a Amount) Add(b Amount) Amount {
	return a + b
}

func (a Amount) IsPositive() bool {
	return a > 0
}

// Float64 is for display and third-party APIs that insist on floats.
func (a Amount) Float64() float64 {
	return float64(a) / 100
}

func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if string(data) == "null" {
		return nil
	}
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
