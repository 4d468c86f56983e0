package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/creditbook/internal/adapter/export"
	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/domain"
)

// StatementService builds client statements.
type StatementService interface {
	BuildStatement(ctx context.Context, clientID string) (*domain.Statement, error)
}

// StatementHandler serves statements as JSON or CSV.
type StatementHandler struct {
	statements StatementService
	classify   dto.Classifier
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statements StatementService, classify dto.Classifier) *StatementHandler {
	return &StatementHandler{statements: statements, classify: classify}
}

// Get returns the statement with running balances.
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	statement, err := h.statements.BuildStatement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to build statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(statement, h.classify))
}

// CSV streams the statement as a CSV attachment.
func (h *StatementHandler) CSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	statement, err := h.statements.BuildStatement(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to build statement", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.StatementFilename(id)))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteStatementCSV(w, statement); err != nil {
		// Headers are already sent.
		zerolog.Ctx(r.Context()).Error().Err(err).Str("client_id", id).Msg("statement export failed")
	}
}
