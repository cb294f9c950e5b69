package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// BatchProcessor generates fresh embeddings for batches of documents.
type BatchProcessor struct {
	embeddings     storage.EmbeddingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embeddings storage.EmbeddingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embeddings:     embeddings,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the contents of a batch of documents and stores the new
// vectors under the processor's embedder model. Documents without content
// are skipped. Returns the number of documents embedded.
// Vectors are normalized after embedding so cosine distances stay in [0, 2].
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) (int, error) {
	withContent := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.HasContent {
			withContent = append(withContent, doc)
		}
	}
	if len(withContent) == 0 {
		return 0, nil
	}

	texts := make([]string, len(withContent))
	for i, doc := range withContent {
		texts[i] = doc.Content
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(withContent) {
		return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(withContent), len(embeddings))
	}

	model := bp.embedder.Model()
	for i, doc := range withContent {
		_, err := bp.embeddings.AddEmbedding(ctx, &core.Embedding{
			DocumentId: doc.Id,
			Vector:     NormalizeVector(embeddings[i]),
			Model:      model,
		})
		if err != nil {
			return i, fmt.Errorf("failed to store embedding for document %d: %w", doc.Id, err)
		}
	}

	return len(withContent), nil
}
