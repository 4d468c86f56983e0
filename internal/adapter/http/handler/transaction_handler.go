package handler

import (
	"context"
	"net/http"

	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/usecase"
)

// TransactionService records the two kinds of ledger event.
type TransactionService interface {
	RecordSale(ctx context.Context, input usecase.RecordSaleInput) (*domain.Sale, error)
	RecordPayment(ctx context.Context, input usecase.RecordPaymentInput) (*domain.Payment, error)
}

// TransactionHandler handles sale and payment requests.
type TransactionHandler struct {
	ledger TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger TransactionService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// RecordSale records a sale on credit.
func (h *TransactionHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordSaleRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale", err.Error())
		return
	}

	sale, err := h.ledger.RecordSale(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to record sale", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SaleFromDomain(sale))
}

// RecordPayment records a payment against the client's balance.
func (h *TransactionHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment", err.Error())
		return
	}

	payment, err := h.ledger.RecordPayment(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}
