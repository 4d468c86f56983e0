package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditbook/internal/adapter/http/dto"
	"github.com/iho/creditbook/internal/domain"
	"github.com/iho/creditbook/internal/usecase"
)

// ClientService defines the behavior needed by ClientHandler.
type ClientService interface {
	AddClient(ctx context.Context, input usecase.AddClientInput) (*domain.Client, error)
	UpdateClientProfile(ctx context.Context, id string, profile domain.ClientProfile) (*domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	ListClients(ctx context.Context) []*domain.Client
	ListEvents(ctx context.Context, clientID string) ([]domain.LedgerEvent, error)
}

// ClientHandler handles client-related HTTP requests.
type ClientHandler struct {
	clients  ClientService
	classify dto.Classifier
}

// NewClientHandler creates a new ClientHandler. classify tags each client
// with its risk tier and may be nil.
func NewClientHandler(clients ClientService, classify dto.Classifier) *ClientHandler {
	return &ClientHandler{clients: clients, classify: classify}
}

// Create adds a client with a zero balance.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddClientRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	client, err := h.clients.AddClient(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to add client", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ClientFromDomain(client, h.classify))
}

// Get retrieves a client by ID.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}

	client, err := h.clients.GetClient(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get client", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientFromDomain(client, h.classify))
}

// List lists every client in insertion order.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients := h.clients.ListClients(r.Context())

	writeJSON(w, http.StatusOK, dto.ListClientsResponse{
		Clients: dto.ClientsFromDomain(clients, h.classify),
		Count:   len(clients),
	})
}

// Update edits a client's name, contact or address.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}

	var req dto.UpdateClientRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	client, err := h.clients.UpdateClientProfile(r.Context(), id, req.ToProfile())
	if err != nil {
		writeDomainError(w, "failed to update client", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientFromDomain(client, h.classify))
}

// Events lists a client's sales and payments in statement order.
func (h *ClientHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	events, err := h.clients.ListEvents(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to list events", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}
