package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditbook/internal/infrastructure/config"
	"github.com/iho/creditbook/internal/infrastructure/metrics"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		StorageBackend:      backend,
		SQLitePath:          "",
		HTTPPort:            "0",
		HTTPShutdownTimeout: time.Second,
		RiskMediumThreshold: decimal.NewFromInt(20000),
		RiskHighThreshold:   decimal.NewFromInt(50000),
		RefreshInterval:     time.Second,
		MutationTimeout:     time.Second,
	}
}

func TestOpenDependencies(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		checks  []string
	}{
		{"memory", config.BackendMemory, nil},
		{"sqlite", config.BackendSQLite, []string{"sqlite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.backend)
			cfg.SQLitePath = filepath.Join(t.TempDir(), "creditbook.db")

			deps, err := openDependencies(context.Background(), cfg, zerolog.Nop(), metrics.New(prometheus.NewRegistry()))
			require.NoError(t, err)
			defer deps.Close()

			assert.NotNil(t, deps.repo)
			assert.Nil(t, deps.notifier)
			assert.Nil(t, deps.idempotency)
			assert.Len(t, deps.checks, len(tt.checks))
			for _, name := range tt.checks {
				require.Contains(t, deps.checks, name)
				assert.NoError(t, deps.checks[name](context.Background()))
			}
		})
	}
}

func TestNewApp_ServesLedger(t *testing.T) {
	cfg := testConfig(config.BackendSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "creditbook.db")
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	deps, err := openDependencies(context.Background(), cfg, zerolog.Nop(), m)
	require.NoError(t, err)
	defer deps.Close()

	a, err := newApp(cfg, deps, m, registry, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, a.store.Load(context.Background()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/", strings.NewReader(`{"name":"Hotel","contact":"1"}`))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sqlite":"ok"`)
}

func TestNewApp_RejectsBadThresholds(t *testing.T) {
	cfg := testConfig(config.BackendMemory)
	cfg.RiskMediumThreshold = decimal.NewFromInt(60000)
	m := metrics.New(prometheus.NewRegistry())

	deps, err := openDependencies(context.Background(), cfg, zerolog.Nop(), m)
	require.NoError(t, err)
	defer deps.Close()

	_, err = newApp(cfg, deps, m, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, testConfig(config.BackendMemory), zerolog.Nop())
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
