package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrFullTextRepositoryRequired is returned when a full-text repository is not provided.
	ErrFullTextRepositoryRequired = errors.New("full-text repository required")

	// ErrExtractorRequired is returned when a content extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrWaitTimeout is returned when a document does not reach a terminal
	// status within the wait deadline. The background work is not cancelled.
	ErrWaitTimeout = errors.New("timed out waiting for document")
)
