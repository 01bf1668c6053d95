// Package retriever implements the Vehicle Retriever (§4.6): cosine-
// similarity search against a dealership's vehicle-embedding index, with
// a context-aware query-expansion and reranking variant, grounded on the
// teacher's pkg/rag/agent_rag.go retrieval shape and original_source's
// rag_enhanced.py context-aware search.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
)

// Embedder produces a dense vector for a piece of text. Implementations
// call out to an embedding provider (§6 "embedding key").
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Vector, error)
}

// Candidate is a retrieved vehicle with its similarity score.
type Candidate struct {
	Vehicle    *domain.Vehicle
	Similarity float64
}

// Context carries conversation-derived filters for the context-aware
// search variant (§4.6).
type Context struct {
	BudgetLow    *float64
	BudgetHigh   *float64
	VehicleType  string
	Preferences  map[string]string
	Urgency      string
}

// Retriever searches a dealership's vehicle index.
type Retriever struct {
	repo     repository.RepositoryManager
	embedder Embedder
}

// New builds a Retriever.
func New(repo repository.RepositoryManager, embedder Embedder) *Retriever {
	return &Retriever{repo: repo, embedder: embedder}
}

// Search returns the top_k vehicles by cosine similarity to query,
// restricted to active inventory.
func (r *Retriever) Search(ctx context.Context, dealershipID, query string, topK int) ([]Candidate, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	embeddings, err := r.repo.Embeddings().ListByDealership(ctx, dealershipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}

	vehicles, err := r.repo.Inventory().ListByDealership(ctx, dealershipID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	byID := make(map[string]*domain.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}

	var candidates []Candidate
	for _, e := range embeddings {
		v, ok := byID[e.VehicleID]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Vehicle:    v,
			Similarity: domain.CosineSimilarity(queryVec, e.Vector),
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Similarity > candidates[j].Similarity })
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// SearchWithContext derives up to four query strings from base and the
// conversation context, searches with each, dedups by (year, make, model),
// drops vehicles outside the budget range or lacking the requested vehicle
// type, reranks by +0.10 per matching preference (capped at 1.0), and
// returns the first topK (§4.6).
func (r *Retriever) SearchWithContext(ctx context.Context, dealershipID, base string, c Context, topK int) ([]Candidate, error) {
	queries := expandQueries(base, c)

	seen := make(map[string]bool)
	var merged []Candidate
	for _, q := range queries {
		results, err := r.Search(ctx, dealershipID, q, topK*4)
		if err != nil {
			return nil, err
		}
		for _, cand := range results {
			key := dedupeKey(cand.Vehicle)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, cand)
		}
	}

	filtered := merged[:0]
	for _, cand := range merged {
		if !withinBudget(cand.Vehicle.Price, c.BudgetLow, c.BudgetHigh) {
			continue
		}
		if c.VehicleType != "" && !strings.Contains(strings.ToLower(cand.Vehicle.Description), strings.ToLower(c.VehicleType)) {
			continue
		}
		filtered = append(filtered, cand)
	}

	for i := range filtered {
		filtered[i].Similarity = rerank(filtered[i], c.Preferences)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Similarity > filtered[j].Similarity })
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered, nil
}

func expandQueries(base string, c Context) []string {
	queries := []string{base}
	if c.BudgetLow != nil || c.BudgetHigh != nil {
		queries = append(queries, fmt.Sprintf("%s within budget", base))
	}
	if c.VehicleType != "" {
		queries = append(queries, fmt.Sprintf("%s %s", base, c.VehicleType))
	}
	if c.Urgency != "" {
		queries = append(queries, fmt.Sprintf("%s %s", base, c.Urgency))
	}
	if len(queries) > 4 {
		queries = queries[:4]
	}
	return queries
}

func dedupeKey(v *domain.Vehicle) string {
	return fmt.Sprintf("%d:%s:%s", v.Year, strings.ToLower(v.Make), strings.ToLower(v.Model))
}

func withinBudget(price float64, lo, hi *float64) bool {
	if lo != nil && price < *lo {
		return false
	}
	if hi != nil && price > *hi {
		return false
	}
	return true
}

func rerank(c Candidate, preferences map[string]string) float64 {
	score := c.Similarity
	descLower := strings.ToLower(c.Vehicle.Description)
	for _, v := range preferences {
		if v != "" && strings.Contains(descLower, strings.ToLower(v)) {
			score += 0.10
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// EnsureEmbeddings builds any missing embeddings for a dealership's active
// vehicles. Idempotent: safe to run repeatedly, including on startup.
func (r *Retriever) EnsureEmbeddings(ctx context.Context, dealershipID string) error {
	vehicles, err := r.repo.Inventory().ListByDealership(ctx, dealershipID, true)
	if err != nil {
		return fmt.Errorf("failed to list inventory for embedding ensure: %w", err)
	}
	existing, err := r.repo.Embeddings().ListByDealership(ctx, dealershipID)
	if err != nil {
		return fmt.Errorf("failed to list embeddings for embedding ensure: %w", err)
	}
	upToDate := make(map[string]string, len(existing))
	for _, e := range existing {
		upToDate[e.VehicleID] = e.InputText
	}

	for _, v := range vehicles {
		inputText := v.EmbeddingInputText()
		if existingText, ok := upToDate[v.ID]; ok && existingText == inputText {
			continue
		}
		vec, err := r.embedder.Embed(ctx, inputText)
		if err != nil {
			return fmt.Errorf("failed to embed vehicle %s: %w", v.ID, err)
		}
		if err := r.repo.Embeddings().Upsert(ctx, &domain.VehicleEmbedding{
			DealershipID: dealershipID,
			VehicleID:    v.ID,
			Vector:       vec,
			InputText:    inputText,
		}); err != nil {
			return fmt.Errorf("failed to upsert embedding for vehicle %s: %w", v.ID, err)
		}
	}
	return nil
}

// DeleteEmbedding removes a single vehicle's embedding, used when a vehicle
// is sold or removed from inventory.
func (r *Retriever) DeleteEmbedding(ctx context.Context, vehicleID string) error {
	if err := r.repo.Embeddings().DeleteByVehicleID(ctx, vehicleID); err != nil {
		return fmt.Errorf("failed to delete embedding for vehicle %s: %w", vehicleID, err)
	}
	return nil
}
