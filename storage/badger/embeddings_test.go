package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "all-MiniLM-L6-v2"

func addDocWithVector(t *testing.T, repos *MemoryRepositories, filename, content string, vector []float32) *core.Document {
	t.Helper()
	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, newDocument(filename, content))
	require.NoError(t, err)

	_, err = repos.Embeddings.AddEmbedding(ctx, &core.Embedding{
		DocumentId: doc.Id,
		Vector:     vector,
		Model:      testModel,
	})
	require.NoError(t, err)
	return doc
}

func TestAddEmbedding_Invalid(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = repos.Embeddings.AddEmbedding(context.Background(), &core.Embedding{
		DocumentId: 1,
		Model:      testModel,
	})
	assert.ErrorIs(t, err, core.ErrEmptyVector)
}

func TestGetLatestEmbedding(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, newDocument("doc.txt", "content"))
	require.NoError(t, err)

	_, err = repos.Embeddings.AddEmbedding(ctx, &core.Embedding{
		DocumentId: doc.Id,
		Vector:     []float32{0.1, 0.1},
		Model:      testModel,
	})
	require.NoError(t, err)

	// A second embedding under the same model supersedes the first
	_, err = repos.Embeddings.AddEmbedding(ctx, &core.Embedding{
		DocumentId: doc.Id,
		Vector:     []float32{0.9, 0.9},
		Model:      testModel,
	})
	require.NoError(t, err)

	latest, err := repos.Embeddings.GetLatestEmbedding(ctx, doc.Id, testModel)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.9, 0.9}, latest.Vector)

	// Both rows survive for audit
	all, err := repos.Embeddings.GetEmbeddingsForDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A different model has no embedding
	_, err = repos.Embeddings.GetLatestEmbedding(ctx, doc.Id, "other-model")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindNearest(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	closest := addDocWithVector(t, repos, "close.txt", "close", []float32{1.0, 0.0, 0.0})
	mid := addDocWithVector(t, repos, "mid.txt", "mid", []float32{0.7, 0.7, 0.0})
	addDocWithVector(t, repos, "far.txt", "far", []float32{0.0, 0.0, 1.0})

	query := []float32{1.0, 0.0, 0.0}

	t.Run("ordered by distance ascending", func(t *testing.T) {
		results, err := repos.Embeddings.FindNearest(ctx, query, testModel, 1.5, 10)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, closest.Id, results[0].DocumentId)
		assert.Equal(t, mid.Id, results[1].DocumentId)
		for i := 0; i < len(results)-1; i++ {
			assert.LessOrEqual(t, results[i].Distance, results[i+1].Distance)
		}
	})

	t.Run("threshold excludes distant matches", func(t *testing.T) {
		results, err := repos.Embeddings.FindNearest(ctx, query, testModel, 0.5, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
	})

	t.Run("limit truncates", func(t *testing.T) {
		results, err := repos.Embeddings.FindNearest(ctx, query, testModel, 1.5, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, closest.Id, results[0].DocumentId)
	})

	t.Run("unknown model finds nothing", func(t *testing.T) {
		results, err := repos.Embeddings.FindNearest(ctx, query, "other-model", 1.5, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestFindNearest_UsesLatestVector(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	doc := addDocWithVector(t, repos, "doc.txt", "content", []float32{0.0, 1.0})

	// Re-embed pointing the document at the query direction
	_, err = repos.Embeddings.AddEmbedding(ctx, &core.Embedding{
		DocumentId: doc.Id,
		Vector:     []float32{1.0, 0.0},
		Model:      testModel,
	})
	require.NoError(t, err)

	results, err := repos.Embeddings.FindNearest(ctx, []float32{1.0, 0.0}, testModel, 0.1, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.0, results[0].Distance, 0.0001)
}

func TestDeleteEmbeddingsForDocument(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	doc := addDocWithVector(t, repos, "doc.txt", "content", []float32{0.5, 0.5})

	require.NoError(t, repos.Embeddings.DeleteEmbeddingsForDocument(ctx, doc.Id))

	embs, err := repos.Embeddings.GetEmbeddingsForDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, embs)

	_, err = repos.Embeddings.GetLatestEmbedding(ctx, doc.Id, testModel)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
