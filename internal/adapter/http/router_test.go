package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/adapter/http/handler"
	apimiddleware "github.com/iho/creditbook/internal/adapter/http/middleware"
	"github.com/iho/creditbook/internal/adapter/repository/memory"
	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/infrastructure/idgen"
	"github.com/iho/creditbook/internal/infrastructure/metrics"
	"github.com/iho/creditbook/internal/usecase"
)

var fixedNow = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	repo := memory.NewCollectionRepository()
	clock := func() time.Time { return fixedNow }
	store := usecase.NewLedgerStore(usecase.LedgerStoreConfig{
		Repo:  repo,
		IDGen: idgen.NewULIDGenerator(),
		Clock: clock,
	})
	require.NoError(t, store.Load(context.Background()))

	reports := usecase.NewReportUseCase(store, domain.DefaultRiskThresholds(), clock)
	registry := prometheus.NewRegistry()

	cfg := RouterConfig{
		ClientHandler:      handler.NewClientHandler(store, reports.Classify),
		TransactionHandler: handler.NewTransactionHandler(store),
		StatementHandler:   handler.NewStatementHandler(usecase.NewStatementUseCase(store), reports.Classify),
		PriceHandler:       handler.NewPriceHandler(store, usecase.NewPriceUseCase(store, clock)),
		ReportHandler:      handler.NewReportHandler(reports, usecase.NewReconciliationUseCase(repo, clock)),
		HealthHandler:      handler.NewHealthHandler(nil),
		Logger:             zerolog.Nop(),
		Metrics:            metrics.New(registry),
		Gatherer:           registry,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := do(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "creditbook_http_requests_total") {
		t.Fatalf("expected metrics exposition, got %d", rec.Code)
	}
}

func TestNewRouter_CreditScenario(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := do(t, router, http.MethodPost, "/api/v1/clients/", `{"name":"Hotel Saffron","contact":"9876543210"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var client dto.ClientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	assert.Equal(t, domain.RiskCleared, client.RiskTier)

	rec = do(t, router, http.MethodPost, "/api/v1/sales",
		`{"client_id":"`+client.ID+`","quantity":"10","unit_price":"200","date":"2024-01-15"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total_amount":"2000.00"`)

	rec = do(t, router, http.MethodPost, "/api/v1/payments",
		`{"client_id":"`+client.ID+`","amount":"1200","date":"2024-01-16"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/v1/payments", `{"client_id":"`+client.ID+`","amount":"801"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/clients/"+client.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	assert.Equal(t, domain.NewMoney(800), client.Balance)

	rec = do(t, router, http.MethodGet, "/api/v1/clients/"+client.ID+"/statement", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var statement dto.StatementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statement))
	require.Len(t, statement.Lines, 2)
	assert.Equal(t, domain.NewMoney(2000), statement.Lines[0].RunningBalance)
	assert.Equal(t, domain.NewMoney(800), statement.Lines[1].RunningBalance)

	rec = do(t, router, http.MethodGet, "/api/v1/clients/"+client.ID+"/statement.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2024-01-16")

	rec = do(t, router, http.MethodGet, "/api/v1/reports/reconciliation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ledger_consistent":true`)
}

func TestNewRouter_PriceScenario(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := do(t, router, http.MethodPost, "/api/v1/prices/", `{"date":"2024-01-01","price_per_kg":"100","supplier":"Farm A"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/v1/prices/trend", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/prices/", `{"date":"2024-01-02","price_per_kg":"110","supplier":"Farm A"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/prices/", `{"date":"2024-01-02","price_per_kg":"120","supplier":"Farm B"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/prices/trend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"direction":"increase"`)

	rec = do(t, router, http.MethodGet, "/api/v1/prices/2024-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price_per_kg":"100.00"`)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.RateLimitPerMinute = 1
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/", strings.NewReader(`{"name":"Hotel","contact":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled || !store.updateCalled {
		t.Fatalf("expected idempotency store to be used, got %+v", store)
	}
}

func TestNewRouter_CORS(t *testing.T) {
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.CORSAllowedOrigins = []string{"https://shop.example"}
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/clients/", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/clients/",
		"GET /api/v1/clients/",
		"GET /api/v1/clients/{id}",
		"PATCH /api/v1/clients/{id}",
		"GET /api/v1/clients/{id}/events",
		"GET /api/v1/clients/{id}/statement",
		"GET /api/v1/clients/{id}/statement.csv",
		"POST /api/v1/sales",
		"POST /api/v1/payments",
		"POST /api/v1/prices/",
		"GET /api/v1/prices/",
		"GET /api/v1/prices/latest",
		"GET /api/v1/prices/today",
		"GET /api/v1/prices/trend",
		"GET /api/v1/prices/{date}",
		"GET /api/v1/reports/dashboard",
		"GET /api/v1/reports/outstanding",
		"GET /api/v1/reports/reconciliation",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

type stubIdempotencyStore struct {
	checkCalled  bool
	updateCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updateCalled = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
