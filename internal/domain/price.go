package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DailyPrice is the per-kilogram price quoted for one calendar date.
type DailyPrice struct {
	ID         string
	Date       Date
	PricePerKg Money
	Supplier   string
	CreatedAt  time.Time
}

// Validate checks the price's inputs. Date uniqueness is a store concern.
func (p *DailyPrice) Validate() error {
	if p.Date.IsZero() {
		return ErrMissingDate
	}
	if !p.PricePerKg.IsPositive() {
		return ErrInvalidPrice
	}
	if strings.TrimSpace(p.Supplier) == "" {
		return ErrEmptySupplier
	}
	if utf8.RuneCountInString(p.Supplier) > MaxSupplierLength {
		return fmt.Errorf("%w: supplier exceeds %d characters", ErrValidation, MaxSupplierLength)
	}
	return nil
}

// TrendDirection is the sign of a price movement.
type TrendDirection string

const (
	TrendIncrease  TrendDirection = "increase"
	TrendDecrease  TrendDirection = "decrease"
	TrendUnchanged TrendDirection = "unchanged"
)

// PriceTrend compares the latest price against the previous dated entry.
type PriceTrend struct {
	Latest    DailyPrice
	Previous  DailyPrice
	Delta     Money
	Percent   decimal.Decimal
	Direction TrendDirection
}

// LatestPrice returns the entry with the greatest date. prices is in
// insertion order, and on equal dates the later entry wins.
func LatestPrice(prices []DailyPrice) (DailyPrice, bool) {
	if len(prices) == 0 {
		return DailyPrice{}, false
	}
	best := prices[0]
	for _, p := range prices[1:] {
		if !p.Date.Before(best.Date) {
			best = p
		}
	}
	return best, true
}

// PriceForDate returns the entry dated exactly on date.
func PriceForDate(prices []DailyPrice, date Date) (DailyPrice, bool) {
	for i := len(prices) - 1; i >= 0; i-- {
		if prices[i].Date.Equal(date) {
			return prices[i], true
		}
	}
	return DailyPrice{}, false
}

// Trend compares the two most recent distinct dates. It reports false when
// fewer than two dates exist.
func Trend(prices []DailyPrice) (PriceTrend, bool) {
	latest, ok := LatestPrice(prices)
	if !ok {
		return PriceTrend{}, false
	}

	var earlier []DailyPrice
	for _, p := range prices {
		if p.Date.Before(latest.Date) {
			earlier = append(earlier, p)
		}
	}
	previous, ok := LatestPrice(earlier)
	if !ok || previous.PricePerKg.IsZero() {
		return PriceTrend{}, false
	}

	delta := latest.PricePerKg.Sub(previous.PricePerKg)
	trend := PriceTrend{
		Latest:    latest,
		Previous:  previous,
		Delta:     delta,
		Percent:   delta.Decimal().Div(previous.PricePerKg.Decimal()).Mul(decimal.NewFromInt(100)),
		Direction: TrendUnchanged,
	}
	switch {
	case delta.IsPositive():
		trend.Direction = TrendIncrease
	case delta.IsNegative():
		trend.Direction = TrendDecrease
	}
	return trend, true
}

// SortPricesByDate returns a copy ordered newest first, later insertions
// first on equal dates.
func SortPricesByDate(prices []DailyPrice) []DailyPrice {
	out := slices.Clone(prices)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b DailyPrice) int {
		return b.Date.Compare(a.Date)
	})
	return out
}
