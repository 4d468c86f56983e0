package usecase

import (
	"context"
	"time"

	"github.com/iho/creditbook/internal/domain"
)

// ReconciliationUseCase compares the persisted client snapshots with the
// totals derived from the persisted event log.
type ReconciliationUseCase struct {
	repo  CollectionRepository
	clock func() time.Time
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(repo CollectionRepository, clock func() time.Time) *ReconciliationUseCase {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &ReconciliationUseCase{repo: repo, clock: clock}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	ClientID       string
	ClientName     string
	StoredCredit   domain.Money
	StoredPaid     domain.Money
	StoredBalance  domain.Money
	DerivedCredit  domain.Money
	DerivedPaid    domain.Money
	DerivedBalance domain.Money
	Difference     domain.Money
	IsReconciled   bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalClients      int
	ReconciledClients int
	Discrepancies     []*ReconciliationResult
	OrphanEvents      int
	LedgerConsistent  bool
	CheckedAt         time.Time
}

// ReconcileClient checks one client.
func (uc *ReconciliationUseCase) ReconcileClient(ctx context.Context, clientID string) (*ReconciliationResult, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range snap.clients {
		if c.ID == clientID {
			return reconcile(c, snap.events[c.ID]), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

// GenerateReconciliationReport checks every client and counts events whose
// client does not exist.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalClients:  len(snap.clients),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.clock(),
	}

	known := make(map[string]bool, len(snap.clients))
	for _, c := range snap.clients {
		known[c.ID] = true
		result := reconcile(c, snap.events[c.ID])
		if result.IsReconciled {
			report.ReconciledClients++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}
	for clientID, events := range snap.events {
		if !known[clientID] {
			report.OrphanEvents += len(events)
		}
	}

	report.LedgerConsistent = len(report.Discrepancies) == 0 && report.OrphanEvents == 0
	return report, nil
}

func reconcile(c *domain.Client, events []domain.LedgerEvent) *ReconciliationResult {
	totals := domain.DeriveTotals(events)
	return &ReconciliationResult{
		ClientID:       c.ID,
		ClientName:     c.Name,
		StoredCredit:   c.TotalCredit,
		StoredPaid:     c.TotalPaid,
		StoredBalance:  c.Balance,
		DerivedCredit:  totals.TotalCredit,
		DerivedPaid:    totals.TotalPaid,
		DerivedBalance: totals.Balance(),
		Difference:     c.Balance.Sub(totals.Balance()),
		IsReconciled:   c.Matches(totals) && c.Consistent(),
	}
}

type persistedLedger struct {
	clients []*domain.Client
	events  map[string][]domain.LedgerEvent
}

func (uc *ReconciliationUseCase) load(ctx context.Context) (*persistedLedger, error) {
	clientsCol, err := uc.repo.Load(ctx, CollectionClients)
	if err != nil {
		return nil, err
	}
	salesCol, err := uc.repo.Load(ctx, CollectionSales)
	if err != nil {
		return nil, err
	}
	paymentsCol, err := uc.repo.Load(ctx, CollectionPayments)
	if err != nil {
		return nil, err
	}

	clients, err := decodeRecords(CollectionClients, clientsCol.Records, clientRecord.toDomain)
	if err != nil {
		return nil, err
	}
	sales, err := decodeRecords(CollectionSales, salesCol.Records, saleRecord.toDomain)
	if err != nil {
		return nil, err
	}
	payments, err := decodeRecords(CollectionPayments, paymentsCol.Records, paymentRecord.toDomain)
	if err != nil {
		return nil, err
	}

	events := make(map[string][]domain.LedgerEvent)
	for _, s := range sales {
		events[s.ClientID] = append(events[s.ClientID], s.Event())
	}
	for _, p := range payments {
		events[p.ClientID] = append(events[p.ClientID], p.Event())
	}

	return &persistedLedger{clients: clients, events: events}, nil
}
