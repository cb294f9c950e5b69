package reembed

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/poiesic/docsift/ai/mock"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/extract"
	"github.com/poiesic/docsift/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reembedding after a model switch: documents ingested under the old model
// become searchable under the new one without re-ingestion.
func TestReembed_AfterModelSwitch(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	oldProvider := mock.NewMockProvider()
	pipeline, err := ingestion.NewPipeline(repos.Documents, repos.Embeddings, repos.FullText,
		extract.NewExtractor(), oldProvider, ingestion.WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	uploads := map[string]string{
		"minutes.txt": "meeting minutes from the planning session",
		"budget.txt":  "projected spend for the next quarter",
	}
	var ids []core.ID
	for filename, content := range uploads {
		doc, receipt, err := pipeline.Ingest(ctx, filename, []byte(content))
		require.NoError(t, err)
		select {
		case <-receipt.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("ingestion did not settle")
		}
		ids = append(ids, doc.Id)
	}

	// Old-model vectors exist
	for _, id := range ids {
		_, err := repos.Embeddings.GetLatestEmbedding(ctx, id, "mock-embedder")
		require.NoError(t, err)
	}

	// Re-embed the corpus under a new model
	newEmbedder := mock.NewMockEmbedder()
	newEmbedder.ModelName = "upgraded-model"
	newEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	var buf bytes.Buffer
	r := NewReembedder(repos.Documents, repos.Embeddings, newEmbedder, nil, &buf)
	require.NoError(t, r.Run(ctx))

	// Nearest-neighbor lookup under the new model finds every document
	matches, err := repos.Embeddings.FindNearest(ctx, []float32{1, 0, 0}, "upgraded-model", 0.5, 10)
	require.NoError(t, err)
	assert.Len(t, matches, len(ids))

	// Old-model vectors survive untouched
	for _, id := range ids {
		_, err := repos.Embeddings.GetLatestEmbedding(ctx, id, "mock-embedder")
		require.NoError(t, err)
	}
}
