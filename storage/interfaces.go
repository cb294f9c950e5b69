package storage

import (
	"context"
	"time"

	"github.com/poiesic/docsift/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing document records.
type DocumentRepository interface {
	Repository
	// AddDocument adds a document to storage.
	// For documents with ID=0, generates a new ID from sequence.
	// Sets CreatedAt and UpdatedAt timestamps if not already set.
	// Returns the document with generated ID and timestamps populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// UpdateDocument updates an existing document.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// UpdateDocumentStatus advances a document's lifecycle status.
	// Rejects transitions out of terminal states with core.ErrStatusRegression;
	// concurrent completion attempts lose cleanly instead of clobbering.
	// Returns the updated document.
	UpdateDocumentStatus(ctx context.Context, id core.ID, status core.DocumentStatus) (*core.Document, error)

	// DeleteDocument removes a document by ID, along with its embeddings,
	// full-text index entries, and secondary indices.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// ListDocuments retrieves documents ordered by creation time descending.
	// Skips offset documents, then returns up to limit.
	ListDocuments(ctx context.Context, limit, offset int) ([]*core.Document, error)

	// GetDocumentsByDateRange retrieves documents within a time range.
	// Returns documents where start <= CreatedAt < end, ordered by creation time.
	GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error)

	// FindByContentHash retrieves documents whose extracted content hashes
	// to the given digest. Duplicate uploads each keep their own row, so
	// multiple results are normal.
	FindByContentHash(ctx context.Context, hash string) ([]*core.Document, error)

	// CountByStatus returns the number of documents in each lifecycle status.
	CountByStatus(ctx context.Context) (map[core.DocumentStatus]int, error)
}

// EmbeddingRepository provides operations for managing embedding records.
type EmbeddingRepository interface {
	Repository
	// AddEmbedding adds an embedding to storage.
	// For embeddings with ID=0, generates a new ID from sequence.
	// Sets CreatedAt timestamp if not already set.
	AddEmbedding(ctx context.Context, emb *core.Embedding) (*core.Embedding, error)

	// GetLatestEmbedding retrieves the most recent embedding for a document
	// under the given model. Returns ErrNotFound if none exists.
	GetLatestEmbedding(ctx context.Context, docID core.ID, model string) (*core.Embedding, error)

	// GetEmbeddingsForDocument retrieves all embeddings for a document,
	// across models, ordered by creation time.
	GetEmbeddingsForDocument(ctx context.Context, docID core.ID) ([]*core.Embedding, error)

	// DeleteEmbeddingsForDocument removes all embeddings for a document.
	DeleteEmbeddingsForDocument(ctx context.Context, docID core.ID) error

	// FindNearest finds documents whose latest embedding under model is close
	// to the given vector. Returns matches with cosine distance < maxDistance,
	// ordered by distance ascending, up to limit results.
	FindNearest(ctx context.Context, vector []float32, model string, maxDistance float64, limit int) ([]*core.NearestMatch, error)
}

// FullTextRepository provides keyword search over document content.
type FullTextRepository interface {
	Repository
	// IndexDocument adds a document's content to the full-text index.
	// Documents without content are ignored.
	IndexDocument(ctx context.Context, doc *core.Document) error

	// RemoveFromIndex removes a document's terms from the full-text index.
	RemoveFromIndex(ctx context.Context, id core.ID) error

	// SearchText finds documents matching the query terms.
	// Returns matches ordered by relevance descending, up to limit results.
	SearchText(ctx context.Context, query string, limit int) ([]*core.TextMatch, error)
}

// AuditRepository records search activity for observability.
type AuditRepository interface {
	Repository
	// AddSearchLog appends a search audit record.
	AddSearchLog(ctx context.Context, log *core.SearchLog) (*core.SearchLog, error)

	// RecentSearchLogs retrieves the N most recent search logs,
	// most recent first.
	RecentSearchLogs(ctx context.Context, limit int) ([]*core.SearchLog, error)
}

// WorkflowRepository provides operations for workflow executions and the
// external actions they trigger.
type WorkflowRepository interface {
	Repository
	// AddWorkflow adds a workflow execution record.
	AddWorkflow(ctx context.Context, wf *core.WorkflowExecution) (*core.WorkflowExecution, error)

	// UpdateWorkflow updates an existing workflow execution.
	// Returns ErrNotFound if the execution doesn't exist.
	UpdateWorkflow(ctx context.Context, wf *core.WorkflowExecution) (*core.WorkflowExecution, error)

	// GetWorkflow retrieves a workflow execution by ID.
	// Returns ErrNotFound if the execution doesn't exist.
	GetWorkflow(ctx context.Context, id string) (*core.WorkflowExecution, error)

	// ListWorkflowsForDocument retrieves workflow executions for a document,
	// most recent first.
	ListWorkflowsForDocument(ctx context.Context, docID core.ID) ([]*core.WorkflowExecution, error)

	// AddAction adds an external action record.
	AddAction(ctx context.Context, action *core.ExternalAction) (*core.ExternalAction, error)

	// UpdateAction updates an existing external action.
	// Returns ErrNotFound if the action doesn't exist.
	UpdateAction(ctx context.Context, action *core.ExternalAction) (*core.ExternalAction, error)

	// ListActionsForWorkflow retrieves the actions triggered by a workflow.
	ListActionsForWorkflow(ctx context.Context, workflowID string) ([]*core.ExternalAction, error)
}
