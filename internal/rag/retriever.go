// Package rag provides retrieval over the real-estate listing vector store.
package rag

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tmc/langchaingo/embeddings"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/qdrant"

	"github.com/vnestate/chatbot-platform/pkg/metrics"
)

// Record is one retrieved document with its similarity score.
type Record struct {
	Content  string
	Score    float32
	Metadata map[string]any
}

// Retriever performs similarity search for a text query. An empty result
// slice is a valid, expected response.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Record, error)
}

// Config holds Qdrant and embedding configuration.
type Config struct {
	QdrantURL      string
	QdrantAPIKey   string
	Collection     string
	OpenAIAPIKey   string
	EmbeddingModel string
	ScoreThreshold float32
}

// QdrantRetriever searches a Qdrant collection using OpenAI embeddings.
type QdrantRetriever struct {
	store      qdrant.Store
	collection string
	threshold  float32
}

// NewQdrantRetriever creates a retriever over the configured collection.
func NewQdrantRetriever(cfg Config) (*QdrantRetriever, error) {
	embLLM, err := lcopenai.New(
		lcopenai.WithToken(cfg.OpenAIAPIKey),
		lcopenai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(embLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	base, err := url.Parse(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	threshold := cfg.ScoreThreshold
	if threshold == 0 {
		threshold = 0.7
	}

	opts := []qdrant.Option{
		qdrant.WithURL(*base),
		qdrant.WithCollectionName(cfg.Collection),
		qdrant.WithEmbedder(embedder),
	}
	if cfg.QdrantAPIKey != "" {
		opts = append(opts, qdrant.WithAPIKey(cfg.QdrantAPIKey))
	}

	store, err := qdrant.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant store: %w", err)
	}

	return &QdrantRetriever{
		store:      store,
		collection: cfg.Collection,
		threshold:  threshold,
	}, nil
}

// Search embeds the query and returns the top-k similar records.
func (r *QdrantRetriever) Search(ctx context.Context, query string, topK int) ([]Record, error) {
	docs, err := r.store.SimilaritySearch(ctx, query, topK,
		vectorstores.WithScoreThreshold(r.threshold))
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, Record{
			Content:  doc.PageContent,
			Score:    doc.Score,
			Metadata: doc.Metadata,
		})
	}

	metrics.RetrievalResults.WithLabelValues(r.collection).Observe(float64(len(records)))
	return records, nil
}
