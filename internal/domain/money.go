package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of fractional digits carried by Money.
	MoneyScale = 2
	// WeightScale is the number of fractional digits carried by Weight (grams per kilogram).
	WeightScale = 3
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Money is a currency amount stored as an integer count of minor units.
type Money int64

// NewMoney returns the amount for a whole number of major units.
func NewMoney(major int64) Money {
	return Money(major * 100)
}

// ParseMoney parses a decimal string such as "1200.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return MoneyFromDecimal(d)
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromDecimal converts a decimal amount in major units. Amounts with more
// precision than the minor unit are rejected rather than rounded.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	minor, err := toScaled(d, MoneyScale)
	if err != nil {
		return 0, err
	}
	return Money(minor), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MoneyScale)
}

// Float64 is for display and charting only.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) String() string {
	return m.Decimal().StringFixed(MoneyScale)
}

func (m Money) Add(o Money) Money { return m + o }
func (m Money) Sub(o Money) Money { return m - o }

// Mul multiplies by an integer scalar.
func (m Money) Mul(n int64) Money { return m * Money(n) }

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsNegative() bool { return m < 0 }

// MarshalJSON encodes the amount as a quoted decimal string, like decimal.Decimal.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.Decimal().MarshalJSON()
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: invalid amount: %v", ErrValidation, err)
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalText(b []byte) error {
	v, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Weight is a quantity stored as an integer count of grams.
type Weight int64

// ParseWeight parses a kilogram amount such as "12.5".
func ParseWeight(s string) (Weight, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid quantity %q", ErrValidation, s)
	}
	return WeightFromDecimal(d)
}

// MustParseWeight is ParseWeight for constants and tests.
func MustParseWeight(s string) Weight {
	w, err := ParseWeight(s)
	if err != nil {
		panic(err)
	}
	return w
}

// WeightFromDecimal converts kilograms to grams; sub-gram precision is rejected.
func WeightFromDecimal(d decimal.Decimal) (Weight, error) {
	grams, err := toScaled(d, WeightScale)
	if err != nil {
		return 0, err
	}
	return Weight(grams), nil
}

// Kilograms returns the quantity in kilograms.
func (w Weight) Kilograms() decimal.Decimal {
	return decimal.New(int64(w), -WeightScale)
}

func (w Weight) String() string {
	return w.Kilograms().String()
}

func (w Weight) IsPositive() bool { return w > 0 }

// Total prices the quantity at a per-kilogram rate. The product is computed
// exactly and rounded half away from zero to the minor currency unit.
func (w Weight) Total(perKg Money) (Money, error) {
	d := decimal.NewFromInt(int64(w)).
		Mul(decimal.NewFromInt(int64(perKg))).
		Shift(-WeightScale).
		Round(0)
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return 0, fmt.Errorf("%w: total amount overflows", ErrValidation)
	}
	return Money(d.IntPart()), nil
}

func (w Weight) MarshalJSON() ([]byte, error) {
	return w.Kilograms().MarshalJSON()
}

func (w *Weight) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: invalid quantity: %v", ErrValidation, err)
	}
	v, err := WeightFromDecimal(d)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

func toScaled(d decimal.Decimal, scale int32) (int64, error) {
	scaled := d.Shift(scale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrValidation, d.String(), scale)
	}
	if scaled.GreaterThan(maxInt64) || scaled.LessThan(minInt64) {
		return 0, fmt.Errorf("%w: %s is out of range", ErrValidation, d.String())
	}
	return scaled.IntPart(), nil
}
