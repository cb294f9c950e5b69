package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/docsift/ai/mock"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/extract"
	"github.com/poiesic/docsift/storage"
	"github.com/poiesic/docsift/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPipeline(t *testing.T, opts ...Option) (*Pipeline, *badger.MemoryRepositories, *mock.MockEmbedder) {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	provider := mock.NewMockProvider()
	embedder := provider.(*mock.MockProvider).GetMockEmbedder()

	opts = append([]Option{WithPoolSize(1)}, opts...)
	pipeline, err := NewPipeline(repos.Documents, repos.Embeddings, repos.FullText,
		extract.NewExtractor(), provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repos, embedder
}

func awaitReceipt(t *testing.T, receipt *Receipt) core.DocumentStatus {
	t.Helper()
	select {
	case <-receipt.Done():
		return receipt.Status()
	case <-time.After(5 * time.Second):
		t.Fatal("receipt did not settle")
		return ""
	}
}

func TestNewPipeline(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	provider := mock.NewMockProvider()
	extractor := extract.NewExtractor()

	t.Run("valid pipeline", func(t *testing.T) {
		pipeline, err := NewPipeline(repos.Documents, repos.Embeddings, repos.FullText, extractor, provider)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		defer pipeline.Release()

		assert.NotNil(t, pipeline.documents)
		assert.NotNil(t, pipeline.pool)
		assert.NotNil(t, pipeline.embeddingProc)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewPipeline(nil, repos.Embeddings, repos.FullText, extractor, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil embedding repository", func(t *testing.T) {
		_, err := NewPipeline(repos.Documents, nil, repos.FullText, extractor, provider)
		assert.Equal(t, ErrEmbeddingRepositoryRequired, err)
	})

	t.Run("nil fulltext repository", func(t *testing.T) {
		_, err := NewPipeline(repos.Documents, repos.Embeddings, nil, extractor, provider)
		assert.Equal(t, ErrFullTextRepositoryRequired, err)
	})

	t.Run("nil extractor", func(t *testing.T) {
		_, err := NewPipeline(repos.Documents, repos.Embeddings, repos.FullText, nil, provider)
		assert.Equal(t, ErrExtractorRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(repos.Documents, repos.Embeddings, repos.FullText, extractor, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestPipeline_WithOptions(t *testing.T) {
	t.Run("with pool size zero defaults to 1", func(t *testing.T) {
		pipeline, _, _ := setupPipeline(t, WithPoolSize(0))
		require.NotNil(t, pipeline.pool)
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		pipeline, _, _ := setupPipeline(t, WithLogger(logger))
		assert.Equal(t, logger, pipeline.logger)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		pipeline, _, _ := setupPipeline(t, WithLogger(nil))
		assert.NotNil(t, pipeline.logger)
	})
}

func TestPipeline_Ingest_TextDocument(t *testing.T) {
	pipeline, repos, _ := setupPipeline(t)
	ctx := context.Background()

	doc, receipt, err := pipeline.Ingest(ctx, "notes.txt", []byte("quarterly budget review notes"))
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.NotZero(t, doc.Id)
	assert.Equal(t, core.FileTypeTXT, doc.FileType)
	assert.Equal(t, int64(29), doc.FileSize)
	assert.True(t, doc.HasContent)
	assert.Equal(t, core.HashContent("quarterly budget review notes"), doc.ContentHash)
	assert.Equal(t, core.StatusProcessing, doc.Status)

	status := awaitReceipt(t, receipt)
	assert.Equal(t, core.StatusCompleted, status)

	// Terminal status persisted
	stored, err := repos.Documents.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, stored.Status)

	// Embedding stored under the mock model
	emb, err := repos.Embeddings.GetLatestEmbedding(ctx, doc.Id, "mock-embedder")
	require.NoError(t, err)
	assert.NotEmpty(t, emb.Vector)

	// Content reachable through the full-text index
	matches, err := repos.FullText.SearchText(ctx, "budget", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, doc.Id, matches[0].DocumentId)
}

func TestPipeline_Ingest_UnsupportedType(t *testing.T) {
	pipeline, repos, _ := setupPipeline(t)
	ctx := context.Background()

	doc, receipt, err := pipeline.Ingest(ctx, "report.docx", []byte("data"))
	require.ErrorIs(t, err, core.ErrUnsupportedFileType)
	assert.Nil(t, doc)
	assert.Nil(t, receipt)

	// No state created
	docs, err := repos.Documents.ListDocuments(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPipeline_Ingest_ExtractionFailure(t *testing.T) {
	pipeline, repos, embedder := setupPipeline(t)
	ctx := context.Background()

	// Invalid UTF-8 cannot be decoded as plain text
	doc, receipt, err := pipeline.Ingest(ctx, "broken.txt", []byte{0xff, 0xfe, 0xfd})
	require.NoError(t, err)
	assert.False(t, doc.HasContent)
	assert.Empty(t, doc.ContentHash)

	// Still settles as completed; nothing to embed
	status := awaitReceipt(t, receipt)
	assert.Equal(t, core.StatusCompleted, status)
	assert.Zero(t, embedder.CallCount())

	_, err = repos.Embeddings.GetLatestEmbedding(ctx, doc.Id, "mock-embedder")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPipeline_Ingest_NoExtractorForType(t *testing.T) {
	pipeline, _, _ := setupPipeline(t)
	ctx := context.Background()

	// PDF without a wired backend: extraction fails, row survives
	doc, receipt, err := pipeline.Ingest(ctx, "report.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.False(t, doc.HasContent)

	status := awaitReceipt(t, receipt)
	assert.Equal(t, core.StatusCompleted, status)
}

func TestPipeline_Ingest_EmbeddingFailure(t *testing.T) {
	pipeline, repos, embedder := setupPipeline(t)
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model unavailable")
	}

	doc, receipt, err := pipeline.Ingest(ctx, "notes.txt", []byte("some content"))
	require.NoError(t, err)

	status := awaitReceipt(t, receipt)
	assert.Equal(t, core.StatusFailed, status)

	stored, err := repos.Documents.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, stored.Status)

	_, err = repos.Embeddings.GetLatestEmbedding(ctx, doc.Id, "mock-embedder")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPipeline_WaitForDocument(t *testing.T) {
	t.Run("settles via receipt", func(t *testing.T) {
		pipeline, _, _ := setupPipeline(t)
		ctx := context.Background()

		doc, _, err := pipeline.Ingest(ctx, "notes.txt", []byte("wait for me"))
		require.NoError(t, err)

		status, err := pipeline.WaitForDocument(ctx, doc.Id, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, core.StatusCompleted, status)
	})

	t.Run("polls when no receipt exists", func(t *testing.T) {
		pipeline, _, _ := setupPipeline(t)
		pipeline.pollInterval = 10 * time.Millisecond
		ctx := context.Background()

		doc, receipt, err := pipeline.Ingest(ctx, "notes.txt", []byte("already done"))
		require.NoError(t, err)
		awaitReceipt(t, receipt)

		// Receipt is gone after settling; the poll path reads storage
		status, err := pipeline.WaitForDocument(ctx, doc.Id, time.Second)
		require.NoError(t, err)
		assert.Equal(t, core.StatusCompleted, status)
	})

	t.Run("times out while processing", func(t *testing.T) {
		pipeline, _, embedder := setupPipeline(t)
		ctx := context.Background()

		release := make(chan struct{})
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			<-release
			return []float32{0.1}, nil
		}
		defer close(release)

		doc, _, err := pipeline.Ingest(ctx, "slow.txt", []byte("slow content"))
		require.NoError(t, err)

		_, err = pipeline.WaitForDocument(ctx, doc.Id, 50*time.Millisecond)
		assert.ErrorIs(t, err, ErrWaitTimeout)
	})

	t.Run("unknown document", func(t *testing.T) {
		pipeline, _, _ := setupPipeline(t)
		pipeline.pollInterval = 10 * time.Millisecond

		_, err := pipeline.WaitForDocument(context.Background(), core.ID(99999), time.Second)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestPipeline_Release(t *testing.T) {
	pipeline, _, _ := setupPipeline(t)

	// Release should not panic, even when called repeatedly
	pipeline.Release()
	pipeline.Release()
}
