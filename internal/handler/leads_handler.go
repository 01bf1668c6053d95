package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/phoneresolver"
	"github.com/gorilla/mux"
)

// setupLeadRoutes registers the lead endpoints of §4.15: create, list by
// dealership, fetch by id, update status, list conversation history.
func (m *HandlerManager) setupLeadRoutes(api *mux.Router) {
	leads := api.PathPrefix("/leads").Subrouter()
	leads.HandleFunc("", m.handleCreateLead).Methods(http.MethodPost)
	leads.HandleFunc("", m.handleListLeads).Methods(http.MethodGet)
	leads.HandleFunc("/{id}", m.handleGetLead).Methods(http.MethodGet)
	leads.HandleFunc("/{id}/status", m.handleUpdateLeadStatus).Methods(http.MethodPatch)
	leads.HandleFunc("/{id}/history", m.handleLeadHistory).Methods(http.MethodGet)
}

type createLeadRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	CarInterest string `json:"car_interest"`
	Source      string `json:"source"`
}

func (m *HandlerManager) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req createLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Input("invalid request body"))
		return
	}
	if req.Name == "" {
		writeError(w, apperr.Input("name is required"))
		return
	}

	lead := &domain.Lead{
		ID:            domain.NewID(),
		DealershipID:  claims.DealershipID,
		Name:          req.Name,
		CarInterest:   req.CarInterest,
		Source:        valueOrDefault(req.Source, "control_api"),
		Status:        domain.LeadStatusNew,
		LastContactAt: time.Now(),
	}
	if req.Phone != "" {
		phone := phoneresolver.Normalize(req.Phone)
		lead.Phone = &phone
	}
	if req.Email != "" {
		lead.Email = &req.Email
	}

	if err := m.deps.Repo.Leads().Create(r.Context(), lead); err != nil {
		writeError(w, apperr.Provider("failed to create lead", err))
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (m *HandlerManager) handleListLeads(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	leads, err := m.deps.Repo.Leads().ListByDealership(r.Context(), claims.DealershipID)
	if err != nil {
		writeError(w, apperr.Provider("failed to list leads", err))
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (m *HandlerManager) handleGetLead(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	lead, err := m.leadInScope(r, claims.DealershipID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type updateLeadStatusRequest struct {
	Status string `json:"status"`
}

func (m *HandlerManager) handleUpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	lead, err := m.leadInScope(r, claims.DealershipID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateLeadStatusRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		writeError(w, apperr.Input("status is required"))
		return
	}

	lead.Status = req.Status
	if err := m.deps.Repo.Leads().Update(r.Context(), lead); err != nil {
		writeError(w, apperr.Provider("failed to update lead status", err))
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (m *HandlerManager) handleLeadHistory(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	lead, err := m.leadInScope(r, claims.DealershipID)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, parseErr := strconv.Atoi(v); parseErr == nil && n > 0 {
			limit = n
		}
	}

	turns, err := m.deps.Repo.Conversations().ListByLead(r.Context(), lead.ID, limit)
	if err != nil {
		writeError(w, apperr.Provider("failed to list conversation history", err))
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// leadInScope fetches the lead named by the {id} path variable and enforces
// that its dealership_id matches the caller's (§4.15: "every endpoint that
// accepts a dealership-scoped resource must enforce that the resource's
// dealership_id equals the caller's").
func (m *HandlerManager) leadInScope(r *http.Request, dealershipID string) (*domain.Lead, error) {
	id := mux.Vars(r)["id"]
	lead, err := m.deps.Repo.Leads().GetByID(r.Context(), id)
	if err != nil {
		return nil, apperr.NotFound("lead not found: " + id)
	}
	if lead.DealershipID != dealershipID {
		return nil, apperr.NotFound("lead not found: " + id)
	}
	return lead, nil
}

func valueOrDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
