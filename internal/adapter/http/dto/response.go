package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/usecase"
)

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Contact     string          `json:"contact"`
	Address     string          `json:"address,omitempty"`
	TotalCredit domain.Money    `json:"total_credit"`
	TotalPaid   domain.Money    `json:"total_paid"`
	Balance     domain.Money    `json:"balance"`
	RiskTier    domain.RiskTier `json:"risk_tier"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Classifier assigns a risk tier to a balance.
type Classifier func(domain.Money) domain.RiskTier

// ClientFromDomain converts a domain client to a response.
func ClientFromDomain(c *domain.Client, classify Classifier) *ClientResponse {
	resp := &ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Contact:     c.Contact,
		Address:     c.Address,
		TotalCredit: c.TotalCredit,
		TotalPaid:   c.TotalPaid,
		Balance:     c.Balance,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if classify != nil {
		resp.RiskTier = classify(c.Balance)
	}
	return resp
}

// ClientsFromDomain converts domain clients to responses.
func ClientsFromDomain(clients []*domain.Client, classify Classifier) []*ClientResponse {
	result := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		result[i] = ClientFromDomain(c, classify)
	}
	return result
}

// ListClientsResponse wraps the client list.
type ListClientsResponse struct {
	Clients []*ClientResponse `json:"clients"`
	Count   int               `json:"count"`
}

// SaleResponse represents a recorded sale.
type SaleResponse struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	Quantity    domain.Weight `json:"quantity"`
	UnitPrice   domain.Money  `json:"unit_price"`
	TotalAmount domain.Money  `json:"total_amount"`
	Date        domain.Date   `json:"date"`
	Description string        `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// SaleFromDomain converts a domain sale to a response.
func SaleFromDomain(s *domain.Sale) *SaleResponse {
	return &SaleResponse{
		ID:          s.ID,
		ClientID:    s.ClientID,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalAmount: s.TotalAmount,
		Date:        s.Date,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

// PaymentResponse represents a recorded payment.
type PaymentResponse struct {
	ID          string       `json:"id"`
	ClientID    string       `json:"client_id"`
	Amount      domain.Money `json:"amount"`
	Date        domain.Date  `json:"date"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		Amount:      p.Amount,
		Date:        p.Date,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// EventResponse is one sale or payment in a client's history.
type EventResponse struct {
	ID          string           `json:"id"`
	Type        domain.EventType `json:"type"`
	Date        domain.Date      `json:"date"`
	Amount      domain.Money     `json:"amount"`
	Quantity    *domain.Weight   `json:"quantity,omitempty"`
	UnitPrice   *domain.Money    `json:"unit_price,omitempty"`
	Description string           `json:"description,omitempty"`
}

// EventsFromDomain converts ledger events to responses.
func EventsFromDomain(events []domain.LedgerEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		resp := &EventResponse{
			ID:          e.ID,
			Type:        e.Type,
			Date:        e.Date,
			Amount:      e.Amount,
			Description: e.Description,
		}
		if e.Type == domain.EventSale {
			quantity, unitPrice := e.Quantity, e.UnitPrice
			resp.Quantity = &quantity
			resp.UnitPrice = &unitPrice
		}
		result[i] = resp
	}
	return result
}

// StatementLineResponse is one row of a statement.
type StatementLineResponse struct {
	EventID        string           `json:"event_id"`
	Date           domain.Date      `json:"date"`
	Type           domain.EventType `json:"type"`
	Amount         domain.Money     `json:"amount"`
	RunningBalance domain.Money     `json:"running_balance"`
	Description    string           `json:"description,omitempty"`
}

// StatementResponse is a client's statement with running balances.
type StatementResponse struct {
	Client         *ClientResponse          `json:"client"`
	Lines          []*StatementLineResponse `json:"lines"`
	ClosingBalance domain.Money             `json:"closing_balance"`
}

// StatementFromDomain materializes the statement's lines.
func StatementFromDomain(s *domain.Statement, classify Classifier) *StatementResponse {
	resp := &StatementResponse{
		Client:         ClientFromDomain(&s.Client, classify),
		Lines:          make([]*StatementLineResponse, 0, s.Len()),
		ClosingBalance: s.ClosingBalance(),
	}
	for line := range s.Lines() {
		resp.Lines = append(resp.Lines, &StatementLineResponse{
			EventID:        line.EventID,
			Date:           line.Date,
			Type:           line.Type,
			Amount:         line.Amount,
			RunningBalance: line.RunningBalance,
			Description:    line.Description,
		})
	}
	return resp
}

// DailyPriceResponse represents a day's price.
type DailyPriceResponse struct {
	ID         string       `json:"id"`
	Date       domain.Date  `json:"date"`
	PricePerKg domain.Money `json:"price_per_kg"`
	Supplier   string       `json:"supplier"`
	CreatedAt  time.Time    `json:"created_at"`
}

// DailyPriceFromDomain converts a domain price to a response.
func DailyPriceFromDomain(p *domain.DailyPrice) *DailyPriceResponse {
	return &DailyPriceResponse{
		ID:         p.ID,
		Date:       p.Date,
		PricePerKg: p.PricePerKg,
		Supplier:   p.Supplier,
		CreatedAt:  p.CreatedAt,
	}
}

// DailyPricesFromDomain converts domain prices to responses.
func DailyPricesFromDomain(prices []domain.DailyPrice) []*DailyPriceResponse {
	result := make([]*DailyPriceResponse, len(prices))
	for i := range prices {
		result[i] = DailyPriceFromDomain(&prices[i])
	}
	return result
}

// TrendResponse compares the two most recent prices.
type TrendResponse struct {
	Latest    *DailyPriceResponse   `json:"latest"`
	Previous  *DailyPriceResponse   `json:"previous"`
	Delta     domain.Money          `json:"delta"`
	Percent   decimal.Decimal       `json:"percent"`
	Direction domain.TrendDirection `json:"direction"`
}

// TrendFromDomain converts a price trend to a response.
func TrendFromDomain(t *domain.PriceTrend) *TrendResponse {
	return &TrendResponse{
		Latest:    DailyPriceFromDomain(&t.Latest),
		Previous:  DailyPriceFromDomain(&t.Previous),
		Delta:     t.Delta,
		Percent:   t.Percent,
		Direction: t.Direction,
	}
}

// ClientRiskResponse is a client with its risk tier.
type ClientRiskResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Contact  string          `json:"contact"`
	Balance  domain.Money    `json:"balance"`
	RiskTier domain.RiskTier `json:"risk_tier"`
}

// ClientRisksFromUseCase converts classified clients to responses.
func ClientRisksFromUseCase(risks []usecase.ClientRisk) []*ClientRiskResponse {
	result := make([]*ClientRiskResponse, len(risks))
	for i, r := range risks {
		result[i] = &ClientRiskResponse{
			ID:       r.Client.ID,
			Name:     r.Client.Name,
			Contact:  r.Client.Contact,
			Balance:  r.Client.Balance,
			RiskTier: r.Tier,
		}
	}
	return result
}

// DashboardResponse is the landing page summary.
type DashboardResponse struct {
	TotalClients       int                     `json:"total_clients"`
	ClientsWithBalance int                     `json:"clients_with_balance"`
	TotalOutstanding   domain.Money            `json:"total_outstanding"`
	MonthSales         domain.Money            `json:"month_sales"`
	MonthPayments      domain.Money            `json:"month_payments"`
	TierCounts         map[domain.RiskTier]int `json:"tier_counts"`
	HighRisk           []*ClientRiskResponse   `json:"high_risk"`
	LatestPrice        *DailyPriceResponse     `json:"latest_price,omitempty"`
	PriceTrend         *TrendResponse          `json:"price_trend,omitempty"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// DashboardFromUseCase converts a dashboard to a response.
func DashboardFromUseCase(d *usecase.Dashboard) *DashboardResponse {
	resp := &DashboardResponse{
		TotalClients:       d.TotalClients,
		ClientsWithBalance: d.ClientsWithBalance,
		TotalOutstanding:   d.TotalOutstanding,
		MonthSales:         d.MonthSales,
		MonthPayments:      d.MonthPayments,
		TierCounts:         d.TierCounts,
		HighRisk:           ClientRisksFromUseCase(d.HighRisk),
		GeneratedAt:        d.GeneratedAt,
	}
	if d.LatestPrice != nil {
		resp.LatestPrice = DailyPriceFromDomain(d.LatestPrice)
	}
	if d.PriceTrend != nil {
		resp.PriceTrend = TrendFromDomain(d.PriceTrend)
	}
	return resp
}

// ReconciliationResultResponse compares a client's snapshot with its events.
type ReconciliationResultResponse struct {
	ClientID       string       `json:"client_id"`
	ClientName     string       `json:"client_name"`
	StoredBalance  domain.Money `json:"stored_balance"`
	DerivedBalance domain.Money `json:"derived_balance"`
	StoredCredit   domain.Money `json:"stored_credit"`
	DerivedCredit  domain.Money `json:"derived_credit"`
	StoredPaid     domain.Money `json:"stored_paid"`
	DerivedPaid    domain.Money `json:"derived_paid"`
	Difference     domain.Money `json:"difference"`
	IsReconciled   bool         `json:"is_reconciled"`
}

// ReconciliationResultFromUseCase converts one client's result to a response.
func ReconciliationResultFromUseCase(d *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		ClientID:       d.ClientID,
		ClientName:     d.ClientName,
		StoredBalance:  d.StoredBalance,
		DerivedBalance: d.DerivedBalance,
		StoredCredit:   d.StoredCredit,
		DerivedCredit:  d.DerivedCredit,
		StoredPaid:     d.StoredPaid,
		DerivedPaid:    d.DerivedPaid,
		Difference:     d.Difference,
		IsReconciled:   d.IsReconciled,
	}
}

// ReconciliationReportResponse summarizes a whole-ledger reconciliation.
type ReconciliationReportResponse struct {
	TotalClients      int                             `json:"total_clients"`
	ReconciledClients int                             `json:"reconciled_clients"`
	Discrepancies     []*ReconciliationResultResponse `json:"discrepancies"`
	OrphanEvents      int                             `json:"orphan_events"`
	LedgerConsistent  bool                            `json:"ledger_consistent"`
	CheckedAt         time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to a response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalClients:      r.TotalClients,
		ReconciledClients: r.ReconciledClients,
		Discrepancies:     make([]*ReconciliationResultResponse, len(r.Discrepancies)),
		OrphanEvents:      r.OrphanEvents,
		LedgerConsistent:  r.LedgerConsistent,
		CheckedAt:         r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationResultFromUseCase(d)
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
