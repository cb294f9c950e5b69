package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// embeddingProcessor generates embeddings for document content.
type embeddingProcessor struct {
	documents  storage.DocumentRepository
	embeddings storage.EmbeddingRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(documents storage.DocumentRepository, embeddings storage.EmbeddingRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if documents == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if embeddings == nil {
		return nil, fmt.Errorf("embedding repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		documents:  documents,
		embeddings: embeddings,
		embedder:   embedder,
		logger:     logger.With("processor", "embeddings"),
	}, nil
}

// process generates and stores an embedding for the document's content.
// Documents without content are skipped; the caller still settles them
// in a terminal status.
func (ep *embeddingProcessor) process(ctx context.Context, id core.ID) error {
	doc, err := ep.documents.GetDocument(ctx, id)
	if err != nil {
		ep.logger.Error("error retrieving document", "document", id, "err", err)
		return err
	}

	if !doc.HasContent {
		ep.logger.Debug("document has no content, skipping embedding", "document", id)
		return nil
	}

	ep.logger.Debug("generating embedding", "document", id, "model", ep.embedder.Model())
	vector, err := ep.embedder.EmbedText(ctx, doc.Content)
	if err != nil {
		ep.logger.Error("error generating embedding", "document", id, "err", err)
		return err
	}

	_, err = ep.embeddings.AddEmbedding(ctx, &core.Embedding{
		DocumentId: id,
		Vector:     vector,
		Model:      ep.embedder.Model(),
	})
	return err
}
