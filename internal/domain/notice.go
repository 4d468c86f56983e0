package domain

// Notice kinds, matching the wording clients see in messages.
const (
	NoticeCredit    = "credit"
	NoticeRepayment = "repayment"
)

// TransactionNotice tells a client about a recorded sale or payment.
type TransactionNotice struct {
	Kind       string `json:"kind"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	Contact    string `json:"contact"`
	EventID    string `json:"event_id"`
	Amount     string `json:"amount"`
	Balance    string `json:"balance"`
	Date       string `json:"date"`
}

// SaleNotice builds the credit notice for s against the updated client.
func SaleNotice(c *Client, s *Sale) TransactionNotice {
	return TransactionNotice{
		Kind:       NoticeCredit,
		ClientID:   c.ID,
		ClientName: c.Name,
		Contact:    c.Contact,
		EventID:    s.ID,
		Amount:     s.TotalAmount.String(),
		Balance:    c.Balance.String(),
		Date:       s.Date.String(),
	}
}

// PaymentNotice builds the repayment notice for p against the updated client.
func PaymentNotice(c *Client, p *Payment) TransactionNotice {
	return TransactionNotice{
		Kind:       NoticeRepayment,
		ClientID:   c.ID,
		ClientName: c.Name,
		Contact:    c.Contact,
		EventID:    p.ID,
		Amount:     p.Amount.String(),
		Balance:    c.Balance.String(),
		Date:       p.Date.String(),
	}
}
