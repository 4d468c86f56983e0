package usecase

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/iho/creditbook/internal/domain"
)

// ReportUseCase derives dashboard figures from the ledger.
type ReportUseCase struct {
	ledger     LedgerReader
	thresholds domain.RiskThresholds
	clock      func() time.Time
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(ledger LedgerReader, thresholds domain.RiskThresholds, clock func() time.Time) *ReportUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &ReportUseCase{ledger: ledger, thresholds: thresholds, clock: clock}
}

// ClientRisk pairs a client with its risk tier.
type ClientRisk struct {
	Client domain.Client
	Tier   domain.RiskTier
}

// Dashboard is the summary shown on the business's landing page.
type Dashboard struct {
	TotalClients       int
	ClientsWithBalance int
	TotalOutstanding   domain.Money
	MonthSales         domain.Money
	MonthPayments      domain.Money
	TierCounts         map[domain.RiskTier]int
	HighRisk           []ClientRisk
	LatestPrice        *domain.DailyPrice
	PriceTrend         *domain.PriceTrend
	GeneratedAt        time.Time
}

// Classify returns the risk tier of a balance under the configured thresholds.
func (uc *ReportUseCase) Classify(balance domain.Money) domain.RiskTier {
	return uc.thresholds.Classify(balance)
}

// Thresholds returns the configured risk thresholds.
func (uc *ReportUseCase) Thresholds() domain.RiskThresholds {
	return uc.thresholds
}

// Dashboard computes the dashboard for the current month.
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := uc.clock()
	today := domain.DateOf(now)
	clients := uc.ledger.ListClients(ctx)

	d := &Dashboard{
		TotalClients: len(clients),
		TierCounts: map[domain.RiskTier]int{
			domain.RiskCleared: 0,
			domain.RiskActive:  0,
			domain.RiskMedium:  0,
			domain.RiskHigh:    0,
		},
		GeneratedAt: now,
	}

	for _, c := range clients {
		d.TotalOutstanding = d.TotalOutstanding.Add(c.Balance)
		if c.Balance.IsPositive() {
			d.ClientsWithBalance++
		}
		tier := uc.thresholds.Classify(c.Balance)
		d.TierCounts[tier]++
		if tier == domain.RiskHigh {
			d.HighRisk = append(d.HighRisk, ClientRisk{Client: *c, Tier: tier})
		}
	}
	sortByBalanceDesc(d.HighRisk)
	if len(d.HighRisk) > HighRiskListSize {
		d.HighRisk = d.HighRisk[:HighRiskListSize]
	}

	for _, e := range uc.ledger.AllEvents(ctx) {
		if !e.Date.SameMonth(today) {
			continue
		}
		switch e.Type {
		case domain.EventSale:
			d.MonthSales = d.MonthSales.Add(e.Amount)
		case domain.EventPayment:
			d.MonthPayments = d.MonthPayments.Add(e.Amount)
		}
	}

	prices := uc.ledger.ListDailyPrices(ctx)
	if p, ok := domain.LatestPrice(prices); ok {
		d.LatestPrice = &p
	}
	if t, ok := domain.Trend(prices); ok {
		d.PriceTrend = &t
	}

	return d, nil
}

// Outstanding lists clients with a positive balance, largest first.
func (uc *ReportUseCase) Outstanding(ctx context.Context) []ClientRisk {
	var out []ClientRisk
	for _, c := range uc.ledger.ListClients(ctx) {
		if !c.Balance.IsPositive() {
			continue
		}
		out = append(out, ClientRisk{Client: *c, Tier: uc.thresholds.Classify(c.Balance)})
	}
	sortByBalanceDesc(out)
	return out
}

func sortByBalanceDesc(list []ClientRisk) {
	slices.SortStableFunc(list, func(a, b ClientRisk) int {
		return cmp.Compare(b.Client.Balance, a.Client.Balance)
	})
}
