package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/usecase"
)

// PriceRecorder appends daily prices to the ledger.
type PriceRecorder interface {
	AddDailyPrice(ctx context.Context, input usecase.AddDailyPriceInput) (*domain.DailyPrice, error)
}

// PriceService answers price lookups.
type PriceService interface {
	History(ctx context.Context) []domain.DailyPrice
	Latest(ctx context.Context) (*domain.DailyPrice, error)
	Today(ctx context.Context) (*domain.DailyPrice, error)
	ForDate(ctx context.Context, date domain.Date) (*domain.DailyPrice, error)
	Trend(ctx context.Context) (*domain.PriceTrend, bool)
}

// PriceHandler handles daily price requests.
type PriceHandler struct {
	recorder PriceRecorder
	prices   PriceService
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(recorder PriceRecorder, prices PriceService) *PriceHandler {
	return &PriceHandler{recorder: recorder, prices: prices}
}

// Create records the price for a day.
func (h *PriceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddDailyPriceRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid daily price", err.Error())
		return
	}

	price, err := h.recorder.AddDailyPrice(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to add daily price", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DailyPriceFromDomain(price))
}

// List returns the price history in insertion order.
func (h *PriceHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.DailyPricesFromDomain(h.prices.History(r.Context())))
}

// Latest returns the most recently dated price.
func (h *PriceHandler) Latest(w http.ResponseWriter, r *http.Request) {
	h.writePrice(w, r, h.prices.Latest)
}

// Today returns the price recorded for the current day.
func (h *PriceHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.writePrice(w, r, h.prices.Today)
}

// ForDate returns the price recorded for the {date} path parameter.
func (h *PriceHandler) ForDate(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	h.writePrice(w, r, func(ctx context.Context) (*domain.DailyPrice, error) {
		return h.prices.ForDate(ctx, date)
	})
}

// Trend compares the two most recent prices.
func (h *PriceHandler) Trend(w http.ResponseWriter, r *http.Request) {
	trend, ok := h.prices.Trend(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not enough price history", "at least two dated prices are required")
		return
	}

	writeJSON(w, http.StatusOK, dto.TrendFromDomain(trend))
}

func (h *PriceHandler) writePrice(w http.ResponseWriter, r *http.Request, lookup func(context.Context) (*domain.DailyPrice, error)) {
	price, err := lookup(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get daily price", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DailyPriceFromDomain(price))
}
