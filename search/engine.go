package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

const (
	// DefaultLimit is the result count used when Options.Limit is unset.
	DefaultLimit = 10

	// DefaultThreshold is the maximum cosine distance used when
	// Options.Threshold is unset.
	DefaultThreshold = 0.7

	// maxResultContent is the length document content is truncated to in
	// search results.
	maxResultContent = 500
)

// Options carries the tunable parameters for a search call.
// The zero value uses defaults.
type Options struct {
	// Limit caps the number of results. Defaults to DefaultLimit.
	Limit int

	// Threshold is the maximum cosine distance for vector candidates.
	// Defaults to DefaultThreshold.
	Threshold float64

	// FileTypes restricts results to documents of the given types.
	// Empty means no restriction.
	FileTypes []core.FileType

	// From and To restrict results to documents created in [From, To).
	From *time.Time
	To   *time.Time
}

// normalized returns a copy of o with defaults applied.
func (o Options) normalized() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// filtered reports whether any result filter is set.
func (o Options) filtered() bool {
	return len(o.FileTypes) > 0 || o.From != nil || o.To != nil
}

// Engine provides vector, full-text, and hybrid retrieval over documents.
type Engine struct {
	documents  storage.DocumentRepository
	embeddings storage.EmbeddingRepository
	fulltext   storage.FullTextRepository
	audit      storage.AuditRepository
	embedder   ai.Embedder
	monitor    SearchMonitor
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMonitor sets a monitor receiving callbacks at each search stage.
func WithMonitor(monitor SearchMonitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(
	documents storage.DocumentRepository,
	embeddings storage.EmbeddingRepository,
	fulltext storage.FullTextRepository,
	audit storage.AuditRepository,
	provider ai.Provider,
	opts ...Option,
) (*Engine, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if fulltext == nil {
		return nil, ErrFullTextRepositoryRequired
	}
	if audit == nil {
		return nil, ErrAuditRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		documents:  documents,
		embeddings: embeddings,
		fulltext:   fulltext,
		audit:      audit,
		embedder:   provider.Embedder(),
		monitor:    &noopMonitor{},
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Search dispatches a query to the engine matching the given mode.
func (e *Engine) Search(ctx context.Context, query string, mode core.SearchMode, opts Options) ([]*core.SearchResult, error) {
	switch mode {
	case core.ModeVector:
		return e.VectorSearch(ctx, query, opts)
	case core.ModeFullText:
		return e.FullTextSearch(ctx, query, opts)
	case core.ModeHybrid:
		return e.HybridSearch(ctx, query, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
}

// VectorSearch embeds the query and returns the nearest documents by cosine
// distance. Similarity is 1 minus distance; for unnormalized vectors it may
// fall outside [0, 1] and is not clamped.
func (e *Engine) VectorSearch(ctx context.Context, query string, opts Options) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	opts = opts.normalized()
	start := time.Now()
	e.monitor.Start(query, core.ModeVector)

	results, err := e.vectorCandidates(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	results, err = e.applyFilters(ctx, results, opts)
	if err != nil {
		return nil, err
	}
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	e.recordSearch(ctx, query, core.ModeVector, len(results), start)
	e.monitor.Finish(results)
	return results, nil
}

// FullTextSearch returns documents matching the query terms, ordered by
// relevance descending.
func (e *Engine) FullTextSearch(ctx context.Context, query string, opts Options) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	opts = opts.normalized()
	start := time.Now()
	e.monitor.Start(query, core.ModeFullText)

	results, err := e.fullTextCandidates(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	results, err = e.applyFilters(ctx, results, opts)
	if err != nil {
		return nil, err
	}
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	e.recordSearch(ctx, query, core.ModeFullText, len(results), start)
	e.monitor.Finish(results)
	return results, nil
}

// HybridSearch runs both vector and full-text retrieval at twice the
// requested limit and fuses the two rankings into a single blended score.
// The Similarity field of each result carries the blended score.
func (e *Engine) HybridSearch(ctx context.Context, query string, opts Options) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	opts = opts.normalized()
	start := time.Now()
	e.monitor.Start(query, core.ModeHybrid)

	overFetch := opts
	overFetch.Limit = opts.Limit * 2

	vectorResults, err := e.vectorCandidates(ctx, query, overFetch)
	if err != nil {
		return nil, err
	}
	textResults, err := e.fullTextCandidates(ctx, query, overFetch)
	if err != nil {
		return nil, err
	}

	results := fuse(vectorResults, textResults)
	e.monitor.AfterFusion(results)

	results, err = e.applyFilters(ctx, results, opts)
	if err != nil {
		return nil, err
	}
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	e.recordSearch(ctx, query, core.ModeHybrid, len(results), start)
	e.monitor.Finish(results)
	return results, nil
}

// SimilarToDocument returns documents whose latest embedding is close to the
// reference document's. The reference document itself is excluded. Returns
// storage.ErrNotFound when the reference has no embedding.
func (e *Engine) SimilarToDocument(ctx context.Context, id core.ID, opts Options) ([]*core.SearchResult, error) {
	opts = opts.normalized()
	start := time.Now()

	reference, err := e.embeddings.GetLatestEmbedding(ctx, id, e.embedder.Model())
	if err != nil {
		return nil, err
	}

	// Fetch one extra so excluding the reference still fills the limit
	matches, err := e.embeddings.FindNearest(ctx, reference.Vector, e.embedder.Model(), opts.Threshold, e.fetchLimit(opts)+1)
	if err != nil {
		e.logger.Error("error querying for similar documents", "document", id, "err", err)
		return nil, err
	}
	e.monitor.AfterVectorSearch(matches)

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		if match.DocumentId == id {
			continue
		}
		results = append(results, nearestToResult(match))
	}

	results, err = e.applyFilters(ctx, results, opts)
	if err != nil {
		return nil, err
	}
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	e.recordSearch(ctx, fmt.Sprintf("similar:%d", id), core.ModeVector, len(results), start)
	e.monitor.Finish(results)
	return results, nil
}

// vectorCandidates embeds the query and converts nearest matches to results.
func (e *Engine) vectorCandidates(ctx context.Context, query string, opts Options) ([]*core.SearchResult, error) {
	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := e.embeddings.FindNearest(ctx, vector, e.embedder.Model(), opts.Threshold, e.fetchLimit(opts))
	if err != nil {
		e.logger.Error("error querying for nearest documents", "err", err)
		return nil, err
	}
	e.monitor.AfterVectorSearch(matches)

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, nearestToResult(match))
	}
	return results, nil
}

// fullTextCandidates runs keyword retrieval and converts matches to results.
func (e *Engine) fullTextCandidates(ctx context.Context, query string, opts Options) ([]*core.SearchResult, error) {
	matches, err := e.fulltext.SearchText(ctx, query, e.fetchLimit(opts))
	if err != nil {
		e.logger.Error("error running full-text query", "err", err)
		return nil, err
	}
	e.monitor.AfterFullTextSearch(matches)

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, &core.SearchResult{
			DocumentId: match.DocumentId,
			Filename:   match.Filename,
			Content:    truncateContent(match.Content),
			Relevance:  match.Relevance,
			CreatedAt:  match.CreatedAt,
		})
	}
	return results, nil
}

// fetchLimit over-fetches when filters will discard candidates afterwards.
func (e *Engine) fetchLimit(opts Options) int {
	if opts.filtered() {
		return opts.Limit * 2
	}
	return opts.Limit
}

// applyFilters drops results outside the requested file types or date range.
// Filters run before limit truncation so they never change result order.
func (e *Engine) applyFilters(ctx context.Context, results []*core.SearchResult, opts Options) ([]*core.SearchResult, error) {
	if !opts.filtered() {
		return results, nil
	}

	var types map[core.FileType]bool
	if len(opts.FileTypes) > 0 {
		ids := make([]core.ID, len(results))
		for i, r := range results {
			ids[i] = r.DocumentId
		}
		docs, err := e.documents.GetDocuments(ctx, ids...)
		if err != nil {
			return nil, err
		}
		byID := make(map[core.ID]core.FileType, len(docs))
		for _, doc := range docs {
			byID[doc.Id] = doc.FileType
		}
		types = make(map[core.FileType]bool, len(opts.FileTypes))
		for _, ft := range opts.FileTypes {
			types[ft] = true
		}

		filtered := results[:0]
		for _, r := range results {
			if types[byID[r.DocumentId]] {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if opts.From != nil || opts.To != nil {
		filtered := results[:0]
		for _, r := range results {
			if opts.From != nil && r.CreatedAt.Before(*opts.From) {
				continue
			}
			if opts.To != nil && !r.CreatedAt.Before(*opts.To) {
				continue
			}
			filtered = append(filtered, r)
		}
		results = filtered
	}

	return results, nil
}

// recordSearch appends an audit log entry. Audit failures are logged and
// swallowed; they never fail the search.
func (e *Engine) recordSearch(ctx context.Context, query string, mode core.SearchMode, count int, start time.Time) {
	_, err := e.audit.AddSearchLog(ctx, &core.SearchLog{
		Query:       query,
		Mode:        mode,
		ResultCount: count,
		DurationMS:  time.Since(start).Milliseconds(),
	})
	if err != nil {
		e.logger.Warn("error recording search log", "err", err)
	}
}

// nearestToResult converts a raw vector hit into a search result.
func nearestToResult(match *core.NearestMatch) *core.SearchResult {
	return &core.SearchResult{
		DocumentId: match.DocumentId,
		Filename:   match.Filename,
		Content:    truncateContent(match.Content),
		Similarity: 1 - match.Distance,
		CreatedAt:  match.CreatedAt,
	}
}

// truncateContent caps result content at maxResultContent characters.
// Counted in runes so multibyte content keeps its full budget and is
// never split mid-character.
func truncateContent(content string) string {
	if utf8.RuneCountInString(content) <= maxResultContent {
		return content
	}
	runes := []rune(content)
	return string(runes[:maxResultContent]) + "..."
}
