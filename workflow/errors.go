package workflow

import "errors"

var (
	// ErrWorkflowRepositoryRequired is returned when a workflow repository is not provided.
	ErrWorkflowRepositoryRequired = errors.New("workflow repository required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrPipelineRequired is returned when an ingestion pipeline is not provided.
	ErrPipelineRequired = errors.New("ingestion pipeline required")

	// ErrEngineRequired is returned when a search engine is not provided.
	ErrEngineRequired = errors.New("search engine required")

	// ErrAnalyzerRequired is returned when an analyzer is not provided.
	ErrAnalyzerRequired = errors.New("analyzer required")

	// ErrDispatcherRequired is returned when an action dispatcher is not provided.
	ErrDispatcherRequired = errors.New("action dispatcher required")
)
