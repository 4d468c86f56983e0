package domain

import (
	"fmt"
	"time"
)

// Client is a credit customer of the business.
type Client struct {
	ID          string
	Name        string
	Contact     string
	Address     string
	TotalCredit Money
	TotalPaid   Money
	Balance     Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientProfile holds the fields a profile edit may change. Nil fields are
// left as they are.
type ClientProfile struct {
	Name    *string
	Contact *string
	Address *string
}

// Clone returns a copy detached from the receiver.
func (c *Client) Clone() *Client {
	cp := *c
	return &cp
}

// ValidatePayment checks that amount does not exceed the outstanding balance.
func (c *Client) ValidatePayment(amount Money) error {
	if amount > c.Balance {
		return fmt.Errorf("%w: amount %s, balance %s", ErrOverpayment, amount, c.Balance)
	}
	return nil
}

// ApplySale records a sale's effect on the financial fields.
func (c *Client) ApplySale(amount Money) {
	c.TotalCredit = c.TotalCredit.Add(amount)
	c.Balance = c.Balance.Add(amount)
}

// ApplyPayment records a payment's effect on the financial fields.
func (c *Client) ApplyPayment(amount Money) {
	c.TotalPaid = c.TotalPaid.Add(amount)
	c.Balance = c.Balance.Sub(amount)
}

// Consistent reports whether Balance equals TotalCredit - TotalPaid.
func (c *Client) Consistent() bool {
	return c.Balance == c.TotalCredit.Sub(c.TotalPaid)
}

// ApplyProfile overwrites the profile fields set in p. Financial fields are
// never touched.
func (c *Client) ApplyProfile(p ClientProfile) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Contact != nil {
		c.Contact = *p.Contact
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
}

// Totals is the financial state of one client derived from its events.
type Totals struct {
	TotalCredit Money
	TotalPaid   Money
}

// Balance returns TotalCredit - TotalPaid.
func (t Totals) Balance() Money {
	return t.TotalCredit.Sub(t.TotalPaid)
}

// DeriveTotals folds a client's events into credit and paid totals.
func DeriveTotals(events []LedgerEvent) Totals {
	var t Totals
	for _, e := range events {
		switch e.Type {
		case EventSale:
			t.TotalCredit = t.TotalCredit.Add(e.Amount)
		case EventPayment:
			t.TotalPaid = t.TotalPaid.Add(e.Amount)
		}
	}
	return t
}

// Matches reports whether the client's stored financial fields equal t.
func (c *Client) Matches(t Totals) bool {
	return c.TotalCredit == t.TotalCredit && c.TotalPaid == t.TotalPaid && c.Balance == t.Balance()
}

// SetTotals replaces the financial fields with derived totals.
func (c *Client) SetTotals(t Totals) {
	c.TotalCredit = t.TotalCredit
	c.TotalPaid = t.TotalPaid
	c.Balance = t.Balance()
}
