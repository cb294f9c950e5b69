package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) *badger.MemoryRepositories {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

// seedDocuments stores n completed text documents with content.
func seedDocuments(t *testing.T, repos *badger.MemoryRepositories, n int) []*core.Document {
	t.Helper()
	ctx := context.Background()

	docs := make([]*core.Document, n)
	for i := 0; i < n; i++ {
		content := fmt.Sprintf("document body %d", i)
		doc, err := repos.Documents.AddDocument(ctx, &core.Document{
			Filename:    fmt.Sprintf("doc-%d.txt", i),
			FileType:    core.FileTypeTXT,
			FileSize:    int64(len(content)),
			Content:     content,
			HasContent:  true,
			ContentHash: core.HashContent(content),
			Status:      core.StatusCompleted,
		})
		require.NoError(t, err)
		docs[i] = doc
	}
	return docs
}

func TestDocumentIterator_EmptyDatabase(t *testing.T) {
	repos := setupRepos(t)
	it := NewDocumentIterator(repos.Documents, 10)

	calls := 0
	err := it.ForEach(context.Background(), func(docs []*core.Document) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls, "no batches for an empty database")
}

func TestDocumentIterator_Batching(t *testing.T) {
	repos := setupRepos(t)
	seedDocuments(t, repos, 25)

	it := NewDocumentIterator(repos.Documents, 10)

	var batchSizes []int
	seen := make(map[core.ID]bool)
	err := it.ForEach(context.Background(), func(docs []*core.Document) error {
		batchSizes = append(batchSizes, len(docs))
		for _, doc := range docs {
			seen[doc.Id] = true
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 10, 5}, batchSizes)
	assert.Len(t, seen, 25, "every document visited exactly once")
}

func TestDocumentIterator_StopsOnError(t *testing.T) {
	repos := setupRepos(t)
	seedDocuments(t, repos, 15)

	it := NewDocumentIterator(repos.Documents, 5)

	calls := 0
	wantErr := errors.New("batch failed")
	err := it.ForEach(context.Background(), func(docs []*core.Document) error {
		calls++
		if calls == 2 {
			return wantErr
		}
		return nil
	})
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 2, calls, "iteration stops at the failing batch")
}

func TestDocumentIterator_ContextCancellation(t *testing.T) {
	repos := setupRepos(t)
	seedDocuments(t, repos, 10)

	ctx, cancel := context.WithCancel(context.Background())
	it := NewDocumentIterator(repos.Documents, 5)

	calls := 0
	err := it.ForEach(ctx, func(docs []*core.Document) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewDocumentIterator_DefaultBatchSize(t *testing.T) {
	repos := setupRepos(t)

	it := NewDocumentIterator(repos.Documents, 0)
	assert.Equal(t, DefaultBatchSize, it.batchSize)

	it = NewDocumentIterator(repos.Documents, -5)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
}
