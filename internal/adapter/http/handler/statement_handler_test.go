package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/domain"
)

type statementServiceStub struct {
	buildFn func(ctx context.Context, clientID string) (*domain.Statement, error)
}

func (s *statementServiceStub) BuildStatement(ctx context.Context, clientID string) (*domain.Statement, error) {
	return s.buildFn(ctx, clientID)
}

func scenarioStatement(clientID string) *domain.Statement {
	client := domain.Client{ID: clientID, Name: "Hotel", TotalCredit: domain.NewMoney(2000), TotalPaid: domain.NewMoney(1200), Balance: domain.NewMoney(800)}
	return domain.NewStatement(client, []domain.LedgerEvent{
		{ID: "s1", ClientID: clientID, Type: domain.EventSale, Date: domain.MustParseDate("2024-01-01"), Seq: 1, Amount: domain.NewMoney(2000)},
		{ID: "p1", ClientID: clientID, Type: domain.EventPayment, Date: domain.MustParseDate("2024-01-02"), Seq: 2, Amount: domain.NewMoney(1200)},
	})
}

func TestStatementHandler_Get(t *testing.T) {
	handler := NewStatementHandler(&statementServiceStub{
		buildFn: func(ctx context.Context, clientID string) (*domain.Statement, error) {
			return scenarioStatement(clientID), nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/clients/c1/statement", nil), "id", "c1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.StatementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Lines) != 2 || resp.Lines[1].RunningBalance != domain.NewMoney(800) {
		t.Fatalf("unexpected statement: %+v", resp)
	}
}

func TestStatementHandler_Get_Inconsistent(t *testing.T) {
	handler := NewStatementHandler(&statementServiceStub{
		buildFn: func(ctx context.Context, clientID string) (*domain.Statement, error) {
			return nil, domain.ErrInconsistentLedger
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/clients/c1/statement", nil), "id", "c1"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestStatementHandler_CSV(t *testing.T) {
	handler := NewStatementHandler(&statementServiceStub{
		buildFn: func(ctx context.Context, clientID string) (*domain.Statement, error) {
			return scenarioStatement(clientID), nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.CSV(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/clients/c1/statement.csv", nil), "id", "c1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="statement_c1.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", rec.Body.String())
	}
	if !strings.HasPrefix(lines[0], "Date,Type,Amount,Balance") {
		t.Fatalf("unexpected header %q", lines[0])
	}
}

func TestStatementHandler_CSV_NotFound(t *testing.T) {
	handler := NewStatementHandler(&statementServiceStub{
		buildFn: func(ctx context.Context, clientID string) (*domain.Statement, error) {
			return nil, domain.ErrClientNotFound
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.CSV(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/clients/x/statement.csv", nil), "id", "x"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON error body, got %q", ct)
	}
}
