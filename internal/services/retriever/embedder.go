package retriever

import (
	"context"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIEmbedder implements Embedder over the OpenAI embeddings endpoint,
// used to build the vehicle-embedding index (§4.6, §6 "embedding key").
// Grounded on the pack's openai-go adapter shape (goadesign-goa-ai's
// features/model/openai/client.go) for client construction and error
// wrapping conventions.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder builds an OpenAIEmbedder from an API key.
func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEmbedder{client: &c, model: openai.EmbeddingModelTextEmbedding3Small}
}

// Embed returns the embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings.new: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings.new: empty response")
	}
	vec := make(domain.Vector, len(resp.Data[0].Embedding))
	for i, f := range resp.Data[0].Embedding {
		vec[i] = f
	}
	return vec, nil
}
