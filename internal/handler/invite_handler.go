package handler

import (
	"net/http"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/roles"
	"github.com/gorilla/mux"
)

// setupInviteRoutes registers the staff invite lifecycle (§4.13, SPEC_FULL
// supplemented features): create and cancel require manager+; list, verify
// and complete are open to any authenticated caller, and complete also
// requires the raw token.
func (m *HandlerManager) setupInviteRoutes(api *mux.Router) {
	invites := api.PathPrefix("/invites").Subrouter()
	invites.Handle("", RequireRole(roles.Manager)(http.HandlerFunc(m.handleCreateInvite))).Methods(http.MethodPost)
	invites.HandleFunc("", m.handleListInvites).Methods(http.MethodGet)
	invites.HandleFunc("/verify", m.handleVerifyInvite).Methods(http.MethodPost)
	invites.HandleFunc("/complete", m.handleCompleteInvite).Methods(http.MethodPost)
	invites.Handle("/{id}/cancel", RequireRole(roles.Manager)(http.HandlerFunc(m.handleCancelInvite))).Methods(http.MethodPost)
}

type createInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (m *HandlerManager) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req createInviteRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Role == "" {
		writeError(w, apperr.Input("email and role are required"))
		return
	}

	inv, rawToken, err := m.deps.Invites.Create(r.Context(), claims.DealershipID, req.Email, req.Role, claims.UserID, claims.Role, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	// The raw token is returned exactly once: it is never persisted, so this
	// response is the only place the invitee's signup link can come from.
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"invite": inv,
		"token":  rawToken,
	})
}

func (m *HandlerManager) handleListInvites(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	invites, err := m.deps.Invites.List(r.Context(), claims.DealershipID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

type verifyInviteRequest struct {
	DealershipID string `json:"dealership_id"`
	Token        string `json:"token"`
}

func (m *HandlerManager) handleVerifyInvite(w http.ResponseWriter, r *http.Request) {
	var req verifyInviteRequest
	if err := decodeJSON(r, &req); err != nil || req.DealershipID == "" || req.Token == "" {
		writeError(w, apperr.Input("dealership_id and token are required"))
		return
	}

	inv, err := m.deps.Invites.Verify(r.Context(), req.DealershipID, req.Token, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

type completeInviteRequest struct {
	DealershipID string `json:"dealership_id"`
	Token        string `json:"token"`
	FullName     string `json:"full_name"`
}

// handleCompleteInvite attaches the JWT's authenticated user to the invited
// dealership and role. Unlike create/cancel, this is reachable by any
// authenticated caller: the raw token itself is the authorization.
func (m *HandlerManager) handleCompleteInvite(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req completeInviteRequest
	if err := decodeJSON(r, &req); err != nil || req.DealershipID == "" || req.Token == "" || req.FullName == "" {
		writeError(w, apperr.Input("dealership_id, token and full_name are required"))
		return
	}

	profile, err := m.deps.Invites.Complete(r.Context(), req.DealershipID, req.Token, req.FullName, claims.UserID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (m *HandlerManager) handleCancelInvite(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := m.deps.Invites.Cancel(r.Context(), claims.DealershipID, id, claims.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
