package domain

import "time"

// Payment is an immutable debit event: money received from a client.
type Payment struct {
	ID          string
	ClientID    string
	Amount      Money
	Date        Date
	Description string
	Seq         int64
	CreatedAt   time.Time
}

// Validate checks the payment's inputs. The balance check lives on Client.
func (p *Payment) Validate() error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Event returns the payment as a ledger event.
func (p *Payment) Event() LedgerEvent {
	return LedgerEvent{
		ID:          p.ID,
		ClientID:    p.ClientID,
		Type:        EventPayment,
		Date:        p.Date,
		Seq:         p.Seq,
		Amount:      p.Amount,
		Description: p.Description,
	}
}
