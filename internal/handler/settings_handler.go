package handler

import (
	"net/http"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/roles"
	"github.com/gorilla/mux"
)

// setupSettingsRoutes registers the Settings Resolver endpoints (§4.12):
// definitions are read-only reference data, user settings are writable by
// the owning user, dealership settings require manager+.
func (m *HandlerManager) setupSettingsRoutes(api *mux.Router) {
	s := api.PathPrefix("/settings").Subrouter()
	s.HandleFunc("/definitions", m.handleListSettingDefinitions).Methods(http.MethodGet)
	s.HandleFunc("/user/{key}", m.handleGetUserSetting).Methods(http.MethodGet)
	s.HandleFunc("/user/{key}", m.handleSetUserSetting).Methods(http.MethodPut)
	s.HandleFunc("/user/{key}", m.handleDeleteUserSetting).Methods(http.MethodDelete)
	s.Handle("/dealership/{key}", RequireRole(roles.Manager)(http.HandlerFunc(m.handleGetDealershipSetting))).Methods(http.MethodGet)
	s.Handle("/dealership/{key}", RequireRole(roles.Manager)(http.HandlerFunc(m.handleSetDealershipSetting))).Methods(http.MethodPut)
}

func (m *HandlerManager) handleListSettingDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := m.deps.Repo.Settings().Definitions(r.Context())
	if err != nil {
		writeError(w, apperr.Provider("failed to list setting definitions", err))
		return
	}
	writeJSON(w, http.StatusOK, defs)
}

func (m *HandlerManager) handleGetUserSetting(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	key := mux.Vars(r)["key"]

	value, err := m.deps.Settings.GetUserEffective(r.Context(), claims.UserID, claims.DealershipID, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

type settingValueRequest struct {
	Value string `json:"value"`
}

func (m *HandlerManager) handleSetUserSetting(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	key := mux.Vars(r)["key"]

	var req settingValueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Input("invalid request body"))
		return
	}

	if err := m.deps.Settings.SetUser(r.Context(), claims.UserID, key, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

func (m *HandlerManager) handleDeleteUserSetting(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	key := mux.Vars(r)["key"]

	if err := m.deps.Settings.DeleteUser(r.Context(), claims.UserID, key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *HandlerManager) handleGetDealershipSetting(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	key := mux.Vars(r)["key"]

	value, err := m.deps.Settings.GetDealership(r.Context(), claims.DealershipID, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (m *HandlerManager) handleSetDealershipSetting(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	key := mux.Vars(r)["key"]

	var req settingValueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Input("invalid request body"))
		return
	}

	if err := m.deps.Settings.SetDealership(r.Context(), claims.DealershipID, key, req.Value, claims.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
