package task

import (
	"context"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/retriever"
)

// RegisterEmbeddingHandlers wires KindEmbeddingBuild/KindEmbeddingDelete
// against the repository and embedder, grounded on §4.6's "vehicle
// insert/update/delete triggers an enqueued background task to rebuild or
// delete that vehicle's embedding".
func RegisterEmbeddingHandlers(m *Manager, repo repository.RepositoryManager, embedder retriever.Embedder) {
	m.RegisterHandler(KindEmbeddingBuild, func(ctx context.Context, t *Task) error {
		p, ok := t.Payload.(EmbeddingBuildPayload)
		if !ok {
			return fmt.Errorf("embedding_build: unexpected payload type %T", t.Payload)
		}
		v, err := repo.Inventory().GetByID(ctx, p.VehicleID)
		if err != nil {
			return fmt.Errorf("embedding_build: lookup vehicle: %w", err)
		}
		if v.Status != domain.VehicleStatusActive {
			return nil
		}
		text := v.EmbeddingInputText()
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embedding_build: embed: %w", err)
		}
		return repo.Embeddings().Upsert(ctx, &domain.VehicleEmbedding{
			DealershipID: p.DealershipID,
			VehicleID:    p.VehicleID,
			Vector:       vec,
			InputText:    text,
		})
	})

	m.RegisterHandler(KindEmbeddingDelete, func(ctx context.Context, t *Task) error {
		p, ok := t.Payload.(EmbeddingBuildPayload)
		if !ok {
			return fmt.Errorf("embedding_delete: unexpected payload type %T", t.Payload)
		}
		return repo.Embeddings().DeleteByVehicleID(ctx, p.VehicleID)
	})
}

// RegisterDelayedSendHandler wires KindDelayedSend against the provider
// registry the orchestrator sends through. The orchestrator enqueues this
// task only when an immediate provider.Sender.Send call fails, so the
// Background Task Manager's existing retry/backoff bookkeeping (§4.16:
// max 3 attempts) becomes the delivery retry for a reply that already
// missed its first attempt, distinct from the Reply Scheduler's
// cooperative-sleep timers for on-time delivery.
func RegisterDelayedSendHandler(m *Manager, providers map[string]provider.Sender) {
	m.RegisterHandler(KindDelayedSend, func(ctx context.Context, t *Task) error {
		p, ok := t.Payload.(DelayedSendPayload)
		if !ok {
			return fmt.Errorf("delayed_send: unexpected payload type %T", t.Payload)
		}
		sender, ok := providers[p.Provider]
		if !ok {
			return fmt.Errorf("delayed_send: unknown provider %q", p.Provider)
		}
		if _, err := sender.Send(ctx, p.From, p.To, p.Text); err != nil {
			return fmt.Errorf("delayed_send: %w", err)
		}
		return nil
	})
}
