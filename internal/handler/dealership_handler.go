package handler

import (
	"net/http"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/roles"
	"github.com/gorilla/mux"
)

// setupDealershipRoutes registers read/write access to the caller's own
// dealership record, including its provider phone-number mappings that
// the Dealership Phone Resolver (§4.2) reads at inbound time. Writes
// require manager+ since a wrong mapping misroutes every inbound message
// for that number.
func (m *HandlerManager) setupDealershipRoutes(api *mux.Router) {
	d := api.PathPrefix("/dealership").Subrouter()
	d.HandleFunc("", m.handleGetDealership).Methods(http.MethodGet)
	d.Handle("/phone-numbers/{provider}", RequireRole(roles.Manager)(http.HandlerFunc(m.handleSetIntegrationPhones))).Methods(http.MethodPut)
}

func (m *HandlerManager) handleGetDealership(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	d, err := m.deps.Repo.Dealerships().GetByID(r.Context(), claims.DealershipID)
	if err != nil {
		writeError(w, apperr.NotFound("dealership not found"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type setPhonesRequest struct {
	PhoneNumbers []string `json:"phone_numbers"`
}

func (m *HandlerManager) handleSetIntegrationPhones(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	provider := mux.Vars(r)["provider"]

	var req setPhonesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Input("invalid request body"))
		return
	}

	d, err := m.deps.Repo.Dealerships().GetByID(r.Context(), claims.DealershipID)
	if err != nil {
		writeError(w, apperr.NotFound("dealership not found"))
		return
	}

	if d.IntegrationConfig == nil {
		d.IntegrationConfig = domain.JSONB{}
	}
	nums := make([]interface{}, len(req.PhoneNumbers))
	for i, n := range req.PhoneNumbers {
		nums[i] = n
	}
	d.IntegrationConfig[provider] = map[string]interface{}{"phone_numbers": nums}

	if err := m.deps.Repo.Dealerships().Update(r.Context(), d); err != nil {
		writeError(w, apperr.Provider("failed to update dealership", err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}
