package domain

import (
	"errors"
	"testing"
)

func TestClient_ValidatePayment(t *testing.T) {
	tests := []struct {
		name        string
		balance     Money
		amount      Money
		expectError bool
	}{
		{
			name:        "payment below balance",
			balance:     NewMoney(800),
			amount:      NewMoney(500),
			expectError: false,
		},
		{
			name:        "payment of exact balance",
			balance:     NewMoney(800),
			amount:      NewMoney(800),
			expectError: false,
		},
		{
			name:        "payment above balance",
			balance:     NewMoney(800),
			amount:      NewMoney(801),
			expectError: true,
		},
		{
			name:        "payment against cleared balance",
			balance:     0,
			amount:      MustParseMoney("0.01"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{Balance: tt.balance}

			err := c.ValidatePayment(tt.amount)

			if tt.expectError && !errors.Is(err, ErrOverpayment) {
				t.Errorf("expected ErrOverpayment, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestClient_ApplySaleAndPayment(t *testing.T) {
	c := &Client{}

	c.ApplySale(NewMoney(2000))
	c.ApplyPayment(NewMoney(1200))

	if c.TotalCredit != NewMoney(2000) {
		t.Errorf("expected total credit 2000, got %s", c.TotalCredit)
	}
	if c.TotalPaid != NewMoney(1200) {
		t.Errorf("expected total paid 1200, got %s", c.TotalPaid)
	}
	if c.Balance != NewMoney(800) {
		t.Errorf("expected balance 800, got %s", c.Balance)
	}
	if !c.Consistent() {
		t.Error("expected balance to equal credit minus paid")
	}
}

func TestClient_ApplyProfile(t *testing.T) {
	c := &Client{Name: "Hotel Saffron", Contact: "9800000001", Address: "MG Road", Balance: NewMoney(50)}
	name := "Saffron Residency"

	c.ApplyProfile(ClientProfile{Name: &name})

	if c.Name != name {
		t.Errorf("expected name %q, got %q", name, c.Name)
	}
	if c.Contact != "9800000001" || c.Address != "MG Road" {
		t.Errorf("expected untouched contact and address, got %q %q", c.Contact, c.Address)
	}
	if c.Balance != NewMoney(50) {
		t.Errorf("profile edit changed balance to %s", c.Balance)
	}
}

func TestDeriveTotals(t *testing.T) {
	events := []LedgerEvent{
		{Type: EventSale, Amount: NewMoney(2000)},
		{Type: EventPayment, Amount: NewMoney(1200)},
		{Type: EventSale, Amount: MustParseMoney("10.50")},
	}

	totals := DeriveTotals(events)

	if totals.TotalCredit != MustParseMoney("2010.50") {
		t.Errorf("unexpected credit %s", totals.TotalCredit)
	}
	if totals.Balance() != MustParseMoney("810.50") {
		t.Errorf("unexpected balance %s", totals.Balance())
	}

	c := &Client{}
	if c.Matches(totals) {
		t.Error("empty client should not match non-zero totals")
	}
	c.SetTotals(totals)
	if !c.Matches(totals) || !c.Consistent() {
		t.Errorf("expected client to match totals after SetTotals: %+v", c)
	}
}
