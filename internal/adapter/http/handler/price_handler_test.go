package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/usecase"
)

type priceRecorderStub struct {
	addFn func(ctx context.Context, input usecase.AddDailyPriceInput) (*domain.DailyPrice, error)
}

func (s *priceRecorderStub) AddDailyPrice(ctx context.Context, input usecase.AddDailyPriceInput) (*domain.DailyPrice, error) {
	return s.addFn(ctx, input)
}

type priceServiceStub struct {
	history []domain.DailyPrice
	trend   *domain.PriceTrend
	today   domain.Date
}

func (s *priceServiceStub) History(context.Context) []domain.DailyPrice { return s.history }

func (s *priceServiceStub) Latest(context.Context) (*domain.DailyPrice, error) {
	latest, ok := domain.LatestPrice(s.history)
	if !ok {
		return nil, domain.ErrPriceNotFound
	}
	return &latest, nil
}

func (s *priceServiceStub) Today(ctx context.Context) (*domain.DailyPrice, error) {
	return s.ForDate(ctx, s.today)
}

func (s *priceServiceStub) ForDate(_ context.Context, date domain.Date) (*domain.DailyPrice, error) {
	price, ok := domain.PriceForDate(s.history, date)
	if !ok {
		return nil, domain.ErrPriceNotFound
	}
	return &price, nil
}

func (s *priceServiceStub) Trend(context.Context) (*domain.PriceTrend, bool) {
	return s.trend, s.trend != nil
}

func priceHistory() []domain.DailyPrice {
	return []domain.DailyPrice{
		{ID: "d1", Date: domain.MustParseDate("2024-01-01"), PricePerKg: domain.NewMoney(100), Supplier: "Farm A"},
		{ID: "d2", Date: domain.MustParseDate("2024-01-02"), PricePerKg: domain.NewMoney(110), Supplier: "Farm A"},
	}
}

func TestPriceHandler_Create(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"duplicate date", domain.ErrDuplicateDate, http.StatusConflict},
		{"empty supplier", domain.ErrEmptySupplier, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPriceHandler(&priceRecorderStub{
				addFn: func(ctx context.Context, input usecase.AddDailyPriceInput) (*domain.DailyPrice, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.DailyPrice{ID: "d1", Date: input.Date, PricePerKg: input.PricePerKg, Supplier: input.Supplier}, nil
				},
			}, &priceServiceStub{})

			body := `{"date":"2024-01-01","price_per_kg":"180.50","supplier":"Farm A"}`
			rec := httptest.NewRecorder()
			handler.Create(rec, httptest.NewRequest(http.MethodPost, "/prices", strings.NewReader(body)))

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestPriceHandler_Lookups(t *testing.T) {
	handler := NewPriceHandler(&priceRecorderStub{}, &priceServiceStub{
		history: priceHistory(),
		today:   domain.MustParseDate("2024-01-03"),
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/prices", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"d2"`)

	rec = httptest.NewRecorder()
	handler.Latest(rec, httptest.NewRequest(http.MethodGet, "/prices/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price_per_kg":"110.00"`)

	rec = httptest.NewRecorder()
	handler.Today(rec, httptest.NewRequest(http.MethodGet, "/prices/today", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.ForDate(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/prices/2024-01-01", nil), "date", "2024-01-01"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"d1"`)

	rec = httptest.NewRecorder()
	handler.ForDate(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/prices/jan-1", nil), "date", "jan-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceHandler_Trend(t *testing.T) {
	handler := NewPriceHandler(&priceRecorderStub{}, &priceServiceStub{})

	rec := httptest.NewRecorder()
	handler.Trend(rec, httptest.NewRequest(http.MethodGet, "/prices/trend", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	history := priceHistory()
	handler = NewPriceHandler(&priceRecorderStub{}, &priceServiceStub{trend: &domain.PriceTrend{
		Latest:    history[1],
		Previous:  history[0],
		Delta:     domain.NewMoney(10),
		Percent:   decimal.NewFromInt(10),
		Direction: domain.TrendIncrease,
	}})

	rec = httptest.NewRecorder()
	handler.Trend(rec, httptest.NewRequest(http.MethodGet, "/prices/trend", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"direction":"increase"`)
	assert.Contains(t, rec.Body.String(), `"delta":"10.00"`)
}
