package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docsift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and trims punctuation",
			text: "Revenue rose, sharply!",
			want: []string{"revenue", "rose", "sharply"},
		},
		{
			name: "removes stop words",
			text: "the report is about the budget",
			want: []string{"report", "about", "budget"},
		},
		{
			name: "empty after filtering",
			text: "the a an",
			want: []string{},
		},
		{
			name: "splits colon-joined words",
			text: "error:timeout during key:value lookup",
			want: []string{"error", "timeout", "during", "key", "value", "lookup"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.text))
		})
	}
}

func TestSearchText(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	docs := map[string]string{
		"budget.txt":  "budget budget budget review",
		"meeting.txt": "meeting notes mention budget once among many many other words here",
		"cats.txt":    "cats sleep all day",
	}
	byName := make(map[string]*core.Document)
	for name, content := range docs {
		doc, err := repos.Documents.AddDocument(ctx, newDocument(name, content))
		require.NoError(t, err)
		require.NoError(t, repos.FullText.IndexDocument(ctx, doc))
		byName[name] = doc
	}

	t.Run("matches ranked by relevance", func(t *testing.T) {
		results, err := repos.FullText.SearchText(ctx, "budget", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, byName["budget.txt"].Id, results[0].DocumentId)
		assert.Greater(t, results[0].Relevance, results[1].Relevance)
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := repos.FullText.SearchText(ctx, "volcano", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("stop word only query", func(t *testing.T) {
		results, err := repos.FullText.SearchText(ctx, "the a an", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("limit truncates", func(t *testing.T) {
		results, err := repos.FullText.SearchText(ctx, "budget", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
	})
}

func TestSearchText_ColonSeparatedWords(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	// No indexed term may carry ':', since posting keys use it as the
	// separator and a colon term would prefix-collide with shorter terms.
	doc, err := repos.Documents.AddDocument(ctx, newDocument("log.txt", "error:timeout while syncing"))
	require.NoError(t, err)
	require.NoError(t, repos.FullText.IndexDocument(ctx, doc))

	other, err := repos.Documents.AddDocument(ctx, newDocument("manual.txt", "errors explained"))
	require.NoError(t, err)
	require.NoError(t, repos.FullText.IndexDocument(ctx, other))

	for _, query := range []string{"error", "timeout", "error:timeout"} {
		results, err := repos.FullText.SearchText(ctx, query, 10)
		require.NoError(t, err)
		require.Len(t, results, 1, "query %q", query)
		assert.Equal(t, doc.Id, results[0].DocumentId, "query %q", query)
	}

	// Exact term matching only: "errors" is not a hit for "error"
	results, err := repos.FullText.SearchText(ctx, "errors", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, other.Id, results[0].DocumentId)
}

func TestIndexDocument_NoContent(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, newDocument("empty.png", ""))
	require.NoError(t, err)

	// Indexing a contentless document is a no-op
	require.NoError(t, repos.FullText.IndexDocument(ctx, doc))

	results, err := repos.FullText.SearchText(ctx, "empty", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReindexDocument_ReplacesTerms(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, newDocument("doc.txt", "original topic"))
	require.NoError(t, err)
	require.NoError(t, repos.FullText.IndexDocument(ctx, doc))

	doc.Content = "replacement subject"
	require.NoError(t, repos.FullText.IndexDocument(ctx, doc))

	stale, err := repos.FullText.SearchText(ctx, "original", 10)
	require.NoError(t, err)
	assert.Empty(t, stale)

	fresh, err := repos.FullText.SearchText(ctx, "replacement", 10)
	require.NoError(t, err)
	assert.Len(t, fresh, 1)
}

func TestRemoveFromIndex(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, newDocument("doc.txt", "fleeting words"))
	require.NoError(t, err)
	require.NoError(t, repos.FullText.IndexDocument(ctx, doc))

	require.NoError(t, repos.FullText.RemoveFromIndex(ctx, doc.Id))

	results, err := repos.FullText.SearchText(ctx, "fleeting", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
