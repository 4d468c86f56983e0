package domain

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// EventType distinguishes sales from payments in a client's history.
type EventType string

const (
	EventSale    EventType = "sale"
	EventPayment EventType = "payment"
)

// LedgerEvent is a sale or payment viewed uniformly.
type LedgerEvent struct {
	ID          string
	ClientID    string
	Type        EventType
	Date        Date
	Seq         int64
	Amount      Money
	Quantity    Weight
	UnitPrice   Money
	Description string
}

// SignedAmount is the event's effect on the balance.
func (e LedgerEvent) SignedAmount() Money {
	if e.Type == EventPayment {
		return -e.Amount
	}
	return e.Amount
}

// CompareEvents orders by date, then insertion sequence, then id.
func CompareEvents(a, b LedgerEvent) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortEvents sorts in place into statement order.
func SortEvents(events []LedgerEvent) {
	slices.SortStableFunc(events, CompareEvents)
}

// StatementLine is one row of a client statement.
type StatementLine struct {
	EventID        string
	Date           Date
	Type           EventType
	Amount         Money
	RunningBalance Money
	Description    string
}

// Statement is a client's chronological history with a running balance.
// It holds its own copy of the events, so Lines can be replayed any number
// of times with identical output.
type Statement struct {
	Client Client
	events []LedgerEvent
}

// NewStatement copies and orders events for c.
func NewStatement(c Client, events []LedgerEvent) *Statement {
	sorted := slices.Clone(events)
	SortEvents(sorted)
	return &Statement{Client: c, events: sorted}
}

// Lines yields statement lines lazily, folding the running balance from zero.
func (s *Statement) Lines() iter.Seq[StatementLine] {
	return func(yield func(StatementLine) bool) {
		var running Money
		for _, e := range s.events {
			running = running.Add(e.SignedAmount())
			line := StatementLine{
				EventID:        e.ID,
				Date:           e.Date,
				Type:           e.Type,
				Amount:         e.Amount,
				RunningBalance: running,
				Description:    e.Description,
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Len returns the number of lines.
func (s *Statement) Len() int { return len(s.events) }

// ClosingBalance returns the running balance after the last line.
func (s *Statement) ClosingBalance() Money {
	var closing Money
	for line := range s.Lines() {
		closing = line.RunningBalance
	}
	return closing
}

// Verify asserts the statement closes at the client's stored balance.
func (s *Statement) Verify() error {
	if closing := s.ClosingBalance(); closing != s.Client.Balance {
		return fmt.Errorf("%w: client %s closing %s, stored %s",
			ErrInconsistentLedger, s.Client.ID, closing, s.Client.Balance)
	}
	return nil
}
