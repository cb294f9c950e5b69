package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the model producing the vectors.
	// Vectors from different models are not comparable, so stored embeddings
	// carry this identifier.
	Model() string
}

// Analyzer produces structured analysis of document content.
// Implementations must be thread-safe for concurrent use.
type Analyzer interface {
	// AnalyzeDocument analyzes extracted document text and returns topics,
	// entities, purpose, insights, a short summary, and suggested tags.
	// Returns an error if the analysis fails.
	AnalyzeDocument(ctx context.Context, content string) (*DocumentAnalysis, error)

	// ExtractInsights analyzes a set of scored search snippets and reports
	// patterns, gaps, and takeaways across them.
	ExtractInsights(ctx context.Context, snippets []ScoredSnippet) (*ResultInsights, error)
}

// DocumentAnalysis is the structured result of analyzing one document.
type DocumentAnalysis struct {
	// Topics are the key themes of the document.
	Topics []string

	// People, Organizations, and Locations are the main entities mentioned.
	People        []string
	Organizations []string
	Locations     []string

	// DocumentKind describes what sort of document this is
	// (e.g. "contract", "report", "invoice").
	DocumentKind string

	// Purpose is a one-line description of what the document is for.
	Purpose string

	// KeyInsights are notable findings surfaced by the analysis.
	KeyInsights []string

	// Summary is a 2-3 sentence summary of the content.
	Summary string

	// Tags are suggested categorization labels.
	Tags []string
}

// ScoredSnippet is a fragment of document content with its search score.
type ScoredSnippet struct {
	Score   float64
	Content string
}

// ResultInsights is the structured result of analyzing search results.
type ResultInsights struct {
	// Patterns are trends observed across the results.
	Patterns []string

	// Assessment describes the overall quality and relevance of the results.
	Assessment string

	// Gaps are topics the results appear to be missing.
	Gaps []string

	// Takeaways are the key conclusions drawn from the results.
	Takeaways []string
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Analyzer instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Analyzer returns the document analysis service.
	// The returned Analyzer is safe for concurrent use.
	Analyzer() Analyzer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
