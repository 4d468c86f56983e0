package domain

import "time"

// Sale is an immutable credit event: goods handed to a client on account.
type Sale struct {
	ID          string
	ClientID    string
	Quantity    Weight
	UnitPrice   Money
	TotalAmount Money
	Date        Date
	Description string
	Seq         int64
	CreatedAt   time.Time
}

// Validate checks the sale's inputs.
func (s *Sale) Validate() error {
	if !s.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if !s.UnitPrice.IsPositive() {
		return ErrInvalidUnitPrice
	}
	if s.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Event returns the sale as a ledger event.
func (s *Sale) Event() LedgerEvent {
	return LedgerEvent{
		ID:          s.ID,
		ClientID:    s.ClientID,
		Type:        EventSale,
		Date:        s.Date,
		Seq:         s.Seq,
		Amount:      s.TotalAmount,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		Description: s.Description,
	}
}
