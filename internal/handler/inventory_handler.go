package handler

import (
	"net/http"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/task"
	"github.com/gorilla/mux"
)

// setupInventoryRoutes registers vehicle CRUD (§4.6). Creates and updates
// enqueue an embedding rebuild rather than computing it inline, so the
// HTTP response never waits on the embedding provider.
func (m *HandlerManager) setupInventoryRoutes(api *mux.Router) {
	inv := api.PathPrefix("/inventory").Subrouter()
	inv.HandleFunc("", m.handleCreateVehicle).Methods(http.MethodPost)
	inv.HandleFunc("", m.handleListVehicles).Methods(http.MethodGet)
	inv.HandleFunc("/{id}", m.handleGetVehicle).Methods(http.MethodGet)
	inv.HandleFunc("/{id}", m.handleUpdateVehicle).Methods(http.MethodPut)
	inv.HandleFunc("/{id}/status", m.handleUpdateVehicleStatus).Methods(http.MethodPatch)
}

type vehicleRequest struct {
	Make        string   `json:"make"`
	Model       string   `json:"model"`
	Year        int      `json:"year"`
	Price       float64  `json:"price"`
	Mileage     int      `json:"mileage"`
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	StockNumber string   `json:"stock_number"`
}

func (m *HandlerManager) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil || req.Make == "" || req.Model == "" {
		writeError(w, apperr.Input("make and model are required"))
		return
	}

	vehicle := &domain.Vehicle{
		ID:           domain.NewID(),
		DealershipID: claims.DealershipID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		Mileage:      req.Mileage,
		Condition:    req.Condition,
		Description:  req.Description,
		Features:     domain.JSONSlice(req.Features),
		StockNumber:  req.StockNumber,
		Status:       domain.VehicleStatusActive,
	}

	if err := m.deps.Repo.Inventory().Create(r.Context(), vehicle); err != nil {
		writeError(w, apperr.Provider("failed to create vehicle", err))
		return
	}

	m.deps.Tasks.Enqueue(r.Context(), task.KindEmbeddingBuild, task.EmbeddingBuildPayload{
		DealershipID: vehicle.DealershipID,
		VehicleID:    vehicle.ID,
	})

	writeJSON(w, http.StatusCreated, vehicle)
}

func (m *HandlerManager) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	onlyAvailable := r.URL.Query().Get("available") == "true"
	vehicles, err := m.deps.Repo.Inventory().ListByDealership(r.Context(), claims.DealershipID, onlyAvailable)
	if err != nil {
		writeError(w, apperr.Provider("failed to list vehicles", err))
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (m *HandlerManager) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	vehicle, err := m.vehicleInScope(r, claims.DealershipID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (m *HandlerManager) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	vehicle, err := m.vehicleInScope(r, claims.DealershipID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Input("invalid request body"))
		return
	}

	priorText := vehicle.EmbeddingInputText()

	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.Price = req.Price
	vehicle.Mileage = req.Mileage
	vehicle.Condition = req.Condition
	vehicle.Description = req.Description
	vehicle.Features = domain.JSONSlice(req.Features)
	vehicle.StockNumber = req.StockNumber

	if err := m.deps.Repo.Inventory().Update(r.Context(), vehicle); err != nil {
		writeError(w, apperr.Provider("failed to update vehicle", err))
		return
	}

	if vehicle.EmbeddingInputText() != priorText {
		m.deps.Tasks.Enqueue(r.Context(), task.KindEmbeddingBuild, task.EmbeddingBuildPayload{
			DealershipID: vehicle.DealershipID,
			VehicleID:    vehicle.ID,
		})
	}

	writeJSON(w, http.StatusOK, vehicle)
}

type updateVehicleStatusRequest struct {
	Status string `json:"status"`
}

func (m *HandlerManager) handleUpdateVehicleStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	vehicle, err := m.vehicleInScope(r, claims.DealershipID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateVehicleStatusRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		writeError(w, apperr.Input("status is required"))
		return
	}

	vehicle.Status = req.Status
	if err := m.deps.Repo.Inventory().Update(r.Context(), vehicle); err != nil {
		writeError(w, apperr.Provider("failed to update vehicle status", err))
		return
	}

	// A vehicle no longer for sale should no longer surface in retrieval.
	if req.Status != domain.VehicleStatusActive {
		m.deps.Tasks.Enqueue(r.Context(), task.KindEmbeddingDelete, task.EmbeddingBuildPayload{
			DealershipID: vehicle.DealershipID,
			VehicleID:    vehicle.ID,
		})
	}

	writeJSON(w, http.StatusOK, vehicle)
}

func (m *HandlerManager) vehicleInScope(r *http.Request, dealershipID string) (*domain.Vehicle, error) {
	id := mux.Vars(r)["id"]
	vehicle, err := m.deps.Repo.Inventory().GetByID(r.Context(), id)
	if err != nil {
		return nil, apperr.NotFound("vehicle not found: " + id)
	}
	if vehicle.DealershipID != dealershipID {
		return nil, apperr.NotFound("vehicle not found: " + id)
	}
	return vehicle, nil
}
