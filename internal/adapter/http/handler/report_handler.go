package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/usecase"
)

// ReportService builds the dashboard and the outstanding list.
type ReportService interface {
	Dashboard(ctx context.Context) (*usecase.Dashboard, error)
	Outstanding(ctx context.Context) []usecase.ClientRisk
}

// ReconciliationService compares snapshots against the event log.
type ReconciliationService interface {
	ReconcileClient(ctx context.Context, clientID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReportHandler handles reporting requests.
type ReportHandler struct {
	reports        ReportService
	reconciliation ReconciliationService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportService, reconciliation ReconciliationService) *ReportHandler {
	return &ReportHandler{reports: reports, reconciliation: reconciliation}
}

// Dashboard returns the summary figures.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reports.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, "failed to build dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromUseCase(dashboard))
}

// Outstanding lists clients who owe money, largest balance first.
func (h *ReportHandler) Outstanding(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ClientRisksFromUseCase(h.reports.Outstanding(r.Context())))
}

// Reconciliation checks every client against the persisted event log.
func (h *ReportHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliation.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, "failed to reconcile ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}

// ReconcileClient checks one client.
func (h *ReportHandler) ReconcileClient(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliation.ReconcileClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to reconcile client", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
}
