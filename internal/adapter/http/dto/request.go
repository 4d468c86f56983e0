package dto

import (
	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/usecase"
)

// AddClientRequest represents a request to add a client.
type AddClientRequest struct {
	Name    string `json:"name"    validate:"required,name_len"`
	Contact string `json:"contact" validate:"required,contact_len"`
	Address string `json:"address" validate:"address_len"`
}

// ToUseCaseInput converts to use case input.
func (r *AddClientRequest) ToUseCaseInput() usecase.AddClientInput {
	return usecase.AddClientInput{
		Name:    r.Name,
		Contact: r.Contact,
		Address: r.Address,
	}
}

// UpdateClientRequest changes profile fields. Omitted fields are kept.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,name_len"`
	Contact *string `json:"contact,omitempty" validate:"omitempty,contact_len"`
	Address *string `json:"address,omitempty" validate:"omitempty,address_len"`
}

// ToProfile converts to a profile edit.
func (r *UpdateClientRequest) ToProfile() domain.ClientProfile {
	return domain.ClientProfile{
		Name:    r.Name,
		Contact: r.Contact,
		Address: r.Address,
	}
}

// RecordSaleRequest represents a sale on credit. Quantity is in kilograms
// and unit price per kilogram, both as decimal strings.
type RecordSaleRequest struct {
	ClientID    string `json:"client_id"   validate:"required"`
	Quantity    string `json:"quantity"    validate:"required"`
	UnitPrice   string `json:"unit_price"  validate:"required"`
	Date        string `json:"date"        validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" validate:"description_len"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordSaleRequest) ToUseCaseInput() (usecase.RecordSaleInput, error) {
	quantity, err := domain.ParseWeight(r.Quantity)
	if err != nil {
		return usecase.RecordSaleInput{}, err
	}
	unitPrice, err := domain.ParseMoney(r.UnitPrice)
	if err != nil {
		return usecase.RecordSaleInput{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return usecase.RecordSaleInput{}, err
	}

	return usecase.RecordSaleInput{
		ClientID:    r.ClientID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Date:        date,
		Description: r.Description,
	}, nil
}

// RecordPaymentRequest represents a payment received.
type RecordPaymentRequest struct {
	ClientID    string `json:"client_id"   validate:"required"`
	Amount      string `json:"amount"      validate:"required"`
	Date        string `json:"date"        validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" validate:"description_len"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput() (usecase.RecordPaymentInput, error) {
	amount, err := domain.ParseMoney(r.Amount)
	if err != nil {
		return usecase.RecordPaymentInput{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return usecase.RecordPaymentInput{}, err
	}

	return usecase.RecordPaymentInput{
		ClientID:    r.ClientID,
		Amount:      amount,
		Date:        date,
		Description: r.Description,
	}, nil
}

// AddDailyPriceRequest records the day's per-kilogram price.
type AddDailyPriceRequest struct {
	Date       string `json:"date"         validate:"omitempty,datetime=2006-01-02"`
	PricePerKg string `json:"price_per_kg" validate:"required"`
	Supplier   string `json:"supplier"     validate:"required,supplier_len"`
}

// ToUseCaseInput converts to use case input.
func (r *AddDailyPriceRequest) ToUseCaseInput() (usecase.AddDailyPriceInput, error) {
	price, err := domain.ParseMoney(r.PricePerKg)
	if err != nil {
		return usecase.AddDailyPriceInput{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return usecase.AddDailyPriceInput{}, err
	}

	return usecase.AddDailyPriceInput{
		Date:       date,
		PricePerKg: price,
		Supplier:   r.Supplier,
	}, nil
}
