package usecase

import (
	"github.com/iho/creditbook/internal/domain"
)

// ledgerState is one consistent view of all collections plus the versions
// they were loaded at. A state is never shared between a mutation in
// progress and readers: mutations build a fresh one and install it whole.
type ledgerState struct {
	clients  []*domain.Client
	byID     map[string]*domain.Client
	sales    []*domain.Sale
	payments []*domain.Payment
	prices   []*domain.DailyPrice
	lastSeq  int64 // persisted sequence counter
	versions map[string]int64
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		byID:     make(map[string]*domain.Client),
		versions: make(map[string]int64),
	}
}

func (st *ledgerState) addClient(c *domain.Client) {
	st.clients = append(st.clients, c)
	st.byID[c.ID] = c
}

func (st *ledgerState) client(id string) (*domain.Client, error) {
	c, ok := st.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return c, nil
}

// nextSeq is one past the highest sequence claimed or used by any sale or
// payment.
func (st *ledgerState) nextSeq() int64 {
	highest := st.lastSeq
	for _, s := range st.sales {
		highest = max(highest, s.Seq)
	}
	for _, p := range st.payments {
		highest = max(highest, p.Seq)
	}
	return highest + 1
}

// eventsFor returns the events of one client, or of all clients when
// clientID is empty, in statement order.
func (st *ledgerState) eventsFor(clientID string) []domain.LedgerEvent {
	var events []domain.LedgerEvent
	for _, s := range st.sales {
		if clientID == "" || s.ClientID == clientID {
			events = append(events, s.Event())
		}
	}
	for _, p := range st.payments {
		if clientID == "" || p.ClientID == clientID {
			events = append(events, p.Event())
		}
	}
	domain.SortEvents(events)
	return events
}
