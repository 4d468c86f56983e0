package usecase

import (
	"context"
	"time"

	"github.com/iho/creditbook/internal/domain"
)

// PriceUseCase answers daily price questions over the ledger's price list.
type PriceUseCase struct {
	ledger LedgerReader
	clock  func() time.Time
}

// NewPriceUseCase creates a new PriceUseCase. A nil clock uses time.Now.
func NewPriceUseCase(ledger LedgerReader, clock func() time.Time) *PriceUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &PriceUseCase{ledger: ledger, clock: clock}
}

// History returns all prices, newest first.
func (uc *PriceUseCase) History(ctx context.Context) []domain.DailyPrice {
	return domain.SortPricesByDate(uc.ledger.ListDailyPrices(ctx))
}

// Latest returns the most recently dated price.
func (uc *PriceUseCase) Latest(ctx context.Context) (*domain.DailyPrice, error) {
	p, ok := domain.LatestPrice(uc.ledger.ListDailyPrices(ctx))
	if !ok {
		return nil, domain.ErrPriceNotFound
	}
	return &p, nil
}

// Today returns the price for the current calendar date.
func (uc *PriceUseCase) Today(ctx context.Context) (*domain.DailyPrice, error) {
	return uc.ForDate(ctx, domain.DateOf(uc.clock()))
}

// ForDate returns the price recorded for date.
func (uc *PriceUseCase) ForDate(ctx context.Context, date domain.Date) (*domain.DailyPrice, error) {
	p, ok := domain.PriceForDate(uc.ledger.ListDailyPrices(ctx), date)
	if !ok {
		return nil, domain.ErrPriceNotFound
	}
	return &p, nil
}

// Trend compares the latest price with the previous dated one. It reports
// false when there are fewer than two distinct dates.
func (uc *PriceUseCase) Trend(ctx context.Context) (*domain.PriceTrend, bool) {
	t, ok := domain.Trend(uc.ledger.ListDailyPrices(ctx))
	if !ok {
		return nil, false
	}
	return &t, true
}
