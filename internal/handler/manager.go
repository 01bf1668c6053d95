// Package handler implements the Inbound Control API and provider webhook
// HTTP surface (§4.15, §6), following the teacher's internal/handler
// convention of one HandlerManager wiring a *mux.Router from already-built
// services, plus one file per resource group.
package handler

import (
	"net/http"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/chatprovider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider/smsprovider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/invite"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/orchestrator"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/phoneresolver"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/retriever"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/roles"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/settings"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/task"
	"github.com/gorilla/mux"
)

// Deps bundles every already-constructed service the handler layer routes
// requests into. cmd/server wires these once at startup.
type Deps struct {
	Repo         repository.RepositoryManager
	Orchestrator *orchestrator.Orchestrator
	Retriever    *retriever.Retriever
	Settings     *settings.Resolver
	Invites      *invite.Service
	Tasks        *task.Manager
	PhoneResolver *phoneresolver.Resolver

	SMS  *smsprovider.Client
	Chat *chatprovider.Client

	JWTSigningSecret   string
	RateLimitPerMinute int
}

// HandlerManager owns the router and every resource's route registration.
type HandlerManager struct {
	deps Deps
}

// NewHandlerManager builds a HandlerManager around already-wired services.
func NewHandlerManager(deps Deps) *HandlerManager {
	return &HandlerManager{deps: deps}
}

// SetupAllRoutes registers every route group on router, mirroring the
// teacher's HandlerManager.SetupAllRoutes entrypoint shape.
func (m *HandlerManager) SetupAllRoutes(router *mux.Router) {
	router.Use(GlobalLoggingMiddleware)
	router.Use(CORSMiddleware)
	router.Use(RateLimitMiddleware(m.deps.RateLimitPerMinute))

	router.HandleFunc("/healthz", m.handleHealthz).Methods(http.MethodGet)

	m.setupWebhookRoutes(router)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(ValidationMiddleware)
	api.Use(JWTAuthMiddleware(m.deps.JWTSigningSecret))
	api.Use(LoggingMiddleware)

	m.setupLeadRoutes(api)
	m.setupInventoryRoutes(api)
	m.setupInviteRoutes(api)
	m.setupSettingsRoutes(api)
	m.setupDealershipRoutes(api)
}

func (m *HandlerManager) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
