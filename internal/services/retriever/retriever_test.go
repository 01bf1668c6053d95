package retriever

import (
	"context"
	"testing"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/stretchr/testify/require"
)

// fakeInventoryRepo is an in-memory InventoryRepository.
type fakeInventoryRepo struct {
	vehicles map[string]*domain.Vehicle
}

func (f *fakeInventoryRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	f.vehicles[v.ID] = v
	return nil
}
func (f *fakeInventoryRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	return f.vehicles[id], nil
}
func (f *fakeInventoryRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	f.vehicles[v.ID] = v
	return nil
}
func (f *fakeInventoryRepo) ListByDealership(ctx context.Context, dealershipID string, onlyAvailable bool) ([]*domain.Vehicle, error) {
	var out []*domain.Vehicle
	for _, v := range f.vehicles {
		if v.DealershipID != dealershipID {
			continue
		}
		if onlyAvailable && v.Status != domain.VehicleStatusActive {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// fakeEmbeddingRepo is an in-memory EmbeddingRepository.
type fakeEmbeddingRepo struct {
	byVehicle map[string]*domain.VehicleEmbedding
}

func (f *fakeEmbeddingRepo) Upsert(ctx context.Context, e *domain.VehicleEmbedding) error {
	f.byVehicle[e.VehicleID] = e
	return nil
}
func (f *fakeEmbeddingRepo) ListByDealership(ctx context.Context, dealershipID string) ([]*domain.VehicleEmbedding, error) {
	var out []*domain.VehicleEmbedding
	for _, e := range f.byVehicle {
		if e.DealershipID == dealershipID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (f *fakeEmbeddingRepo) DeleteByVehicleID(ctx context.Context, vehicleID string) error {
	delete(f.byVehicle, vehicleID)
	return nil
}

type fakeRepoManager struct {
	repository.RepositoryManager
	inventory  *fakeInventoryRepo
	embeddings *fakeEmbeddingRepo
}

func (f *fakeRepoManager) Inventory() repository.InventoryRepository  { return f.inventory }
func (f *fakeRepoManager) Embeddings() repository.EmbeddingRepository { return f.embeddings }

// fakeEmbedder returns the vector registered for a text in vectors, or
// fallback for any other text, good enough to exercise cosine-similarity
// ordering deterministically.
type fakeEmbedder struct {
	vectors map[string]domain.Vector
	fallback domain.Vector
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fallback, nil
}

func newTestRetriever() (*Retriever, *fakeRepoManager, *fakeEmbedder) {
	rm := &fakeRepoManager{
		inventory:  &fakeInventoryRepo{vehicles: make(map[string]*domain.Vehicle)},
		embeddings: &fakeEmbeddingRepo{byVehicle: make(map[string]*domain.VehicleEmbedding)},
	}
	emb := &fakeEmbedder{vectors: make(map[string]domain.Vector), fallback: domain.Vector{1, 0, 0}}
	return New(rm, emb), rm, emb
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	r, rm, emb := newTestRetriever()

	rm.inventory.vehicles["v1"] = &domain.Vehicle{ID: "v1", DealershipID: "d1", Make: "Honda", Model: "Civic", Year: 2022, Status: domain.VehicleStatusActive}
	rm.inventory.vehicles["v2"] = &domain.Vehicle{ID: "v2", DealershipID: "d1", Make: "Toyota", Model: "Camry", Year: 2021, Status: domain.VehicleStatusActive}
	rm.embeddings.byVehicle["v1"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "v1", Vector: domain.Vector{1, 0, 0}}
	rm.embeddings.byVehicle["v2"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "v2", Vector: domain.Vector{0, 1, 0}}
	emb.vectors["sedan"] = domain.Vector{1, 0, 0}

	results, err := r.Search(context.Background(), "d1", "sedan", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "v1", results[0].Vehicle.ID)
}

func TestSearch_ExcludesInactiveInventory(t *testing.T) {
	r, rm, emb := newTestRetriever()
	rm.inventory.vehicles["v1"] = &domain.Vehicle{ID: "v1", DealershipID: "d1", Status: domain.VehicleStatusSold}
	rm.embeddings.byVehicle["v1"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "v1", Vector: domain.Vector{1, 0, 0}}
	emb.vectors["sedan"] = domain.Vector{1, 0, 0}

	results, err := r.Search(context.Background(), "d1", "sedan", 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchWithContext_FiltersByBudget(t *testing.T) {
	r, rm, emb := newTestRetriever()
	rm.inventory.vehicles["cheap"] = &domain.Vehicle{ID: "cheap", DealershipID: "d1", Make: "Honda", Model: "Civic", Year: 2020, Price: 15000, Status: domain.VehicleStatusActive}
	rm.inventory.vehicles["pricey"] = &domain.Vehicle{ID: "pricey", DealershipID: "d1", Make: "BMW", Model: "X5", Year: 2023, Price: 60000, Status: domain.VehicleStatusActive}
	rm.embeddings.byVehicle["cheap"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "cheap", Vector: domain.Vector{1, 0, 0}}
	rm.embeddings.byVehicle["pricey"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "pricey", Vector: domain.Vector{1, 0, 0}}
	emb.fallback = domain.Vector{1, 0, 0}

	high := 30000.0
	results, err := r.SearchWithContext(context.Background(), "d1", "car", Context{BudgetHigh: &high}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "cheap", results[0].Vehicle.ID)
}

func TestSearchWithContext_RerankCapsAtOne(t *testing.T) {
	r, rm, emb := newTestRetriever()
	rm.inventory.vehicles["v1"] = &domain.Vehicle{ID: "v1", DealershipID: "d1", Make: "Honda", Model: "Civic", Description: "red leather sunroof", Status: domain.VehicleStatusActive}
	rm.embeddings.byVehicle["v1"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "v1", Vector: domain.Vector{1, 0, 0}}
	emb.fallback = domain.Vector{1, 0, 0}

	prefs := map[string]string{"color": "red", "trim": "leather", "option": "sunroof"}
	results, err := r.SearchWithContext(context.Background(), "d1", "car", Context{Preferences: prefs}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.LessOrEqual(t, results[0].Similarity, 1.0)
}

func TestEnsureEmbeddings_SkipsUpToDate(t *testing.T) {
	r, rm, emb := newTestRetriever()
	v := &domain.Vehicle{ID: "v1", DealershipID: "d1", Make: "Honda", Model: "Civic", Year: 2022, Status: domain.VehicleStatusActive}
	rm.inventory.vehicles["v1"] = v
	rm.embeddings.byVehicle["v1"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "v1", InputText: v.EmbeddingInputText(), Vector: domain.Vector{1, 0, 0}}
	calls := 0
	emb.vectors = map[string]domain.Vector{}
	wrapped := &countingEmbedder{inner: emb, calls: &calls}
	r2 := New(rm, wrapped)

	require.NoError(t, r2.EnsureEmbeddings(context.Background(), "d1"))
	require.Equal(t, 0, calls)
}

type countingEmbedder struct {
	inner *fakeEmbedder
	calls *int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	*c.calls++
	return c.inner.Embed(ctx, text)
}

func TestEnsureEmbeddings_BuildsMissing(t *testing.T) {
	r, rm, emb := newTestRetriever()
	v := &domain.Vehicle{ID: "v1", DealershipID: "d1", Make: "Honda", Model: "Civic", Year: 2022, Status: domain.VehicleStatusActive}
	rm.inventory.vehicles["v1"] = v
	emb.fallback = domain.Vector{0.5, 0.5, 0}

	require.NoError(t, r.EnsureEmbeddings(context.Background(), "d1"))
	require.Contains(t, rm.embeddings.byVehicle, "v1")
}

func TestDeleteEmbedding(t *testing.T) {
	r, rm, _ := newTestRetriever()
	rm.embeddings.byVehicle["v1"] = &domain.VehicleEmbedding{DealershipID: "d1", VehicleID: "v1"}

	require.NoError(t, r.DeleteEmbedding(context.Background(), "v1"))
	require.NotContains(t, rm.embeddings.byVehicle, "v1")
}
