package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/creditbook/internal/domain"
)

// Persisted shapes. Field names are part of the storage format.

type clientRecord struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Contact     string       `json:"contact"`
	Address     string       `json:"address,omitempty"`
	TotalCredit domain.Money `json:"total_credit"`
	TotalPaid   domain.Money `json:"total_paid"`
	Balance     domain.Money `json:"balance"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type saleRecord struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	Quantity    domain.Weight `json:"quantity"`
	UnitPrice   domain.Money  `json:"unit_price"`
	TotalAmount domain.Money  `json:"total_amount"`
	Date        domain.Date   `json:"date"`
	Description string        `json:"description,omitempty"`
	Seq         int64         `json:"seq"`
	CreatedAt   time.Time     `json:"created_at"`
}

type paymentRecord struct {
	ID          string       `json:"id"`
	ClientID    string       `json:"client_id"`
	Amount      domain.Money `json:"amount"`
	Date        domain.Date  `json:"date"`
	Description string       `json:"description,omitempty"`
	Seq         int64        `json:"seq"`
	CreatedAt   time.Time    `json:"created_at"`
}

type priceRecord struct {
	ID         string       `json:"id"`
	Date       domain.Date  `json:"date"`
	PricePerKg domain.Money `json:"price_per_kg"`
	Supplier   string       `json:"supplier"`
	CreatedAt  time.Time    `json:"created_at"`
}

type sequenceRecord struct {
	Last int64 `json:"last"`
}

func decodeSequence(raw []json.RawMessage) (int64, error) {
	records, err := decodeRecords(CollectionSequence, raw, func(r sequenceRecord) int64 { return r.Last })
	if err != nil {
		return 0, err
	}
	var last int64
	for _, n := range records {
		last = max(last, n)
	}
	return last, nil
}

func clientToRecord(c *domain.Client) clientRecord {
	return clientRecord{
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
}

func (r clientRecord) toDomain() *domain.Client {
	return &domain.Client{
		ID:          r.ID,
		Name:        r.Name,
		Contact:     r.Contact,
		Address:     r.Address,
		TotalCredit: r.TotalCredit,
		TotalPaid:   r.TotalPaid,
		Balance:     r.Balance,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func saleToRecord(s *domain.Sale) saleRecord {
	return saleRecord{
		ID:          s.ID,
		ClientID:    s.ClientID,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalAmount: s.TotalAmount,
		Date:        s.Date,
		Description: s.Description,
		Seq:         s.Seq,
		CreatedAt:   s.CreatedAt,
	}
}

func (r saleRecord) toDomain() *domain.Sale {
	return &domain.Sale{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TotalAmount: r.TotalAmount,
		Date:        r.Date,
		Description: r.Description,
		Seq:         r.Seq,
		CreatedAt:   r.CreatedAt,
	}
}

func paymentToRecord(p *domain.Payment) paymentRecord {
	return paymentRecord{
		ID:          p.ID,
		ClientID:    p.ClientID,
		Amount:      p.Amount,
		Date:        p.Date,
		Description: p.Description,
		Seq:         p.Seq,
		CreatedAt:   p.CreatedAt,
	}
}

func (r paymentRecord) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Amount:      r.Amount,
		Date:        r.Date,
		Description: r.Description,
		Seq:         r.Seq,
		CreatedAt:   r.CreatedAt,
	}
}

func priceToRecord(p *domain.DailyPrice) priceRecord {
	return priceRecord{
		ID:         p.ID,
		Date:       p.Date,
		PricePerKg: p.PricePerKg,
		Supplier:   p.Supplier,
		CreatedAt:  p.CreatedAt,
	}
}

func (r priceRecord) toDomain() *domain.DailyPrice {
	return &domain.DailyPrice{
		ID:         r.ID,
		Date:       r.Date,
		PricePerKg: r.PricePerKg,
		Supplier:   r.Supplier,
		CreatedAt:  r.CreatedAt,
	}
}

func encodeRecords[T, R any](items []T, toRecord func(T) R) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(toRecord(item))
		if err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeRecords[R any, T any](key string, raw []json.RawMessage, toDomain func(R) T) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, b := range raw {
		var r R
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %d: %w", key, i, err)
		}
		out = append(out, toDomain(r))
	}
	return out, nil
}
