package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/extract"
	"github.com/poiesic/docsift/storage"
)

// defaultPollInterval is how often WaitForDocument re-reads a document's
// status when no in-process receipt exists for it.
const defaultPollInterval = 2 * time.Second

// Pipeline orchestrates the ingestion and processing of uploaded documents.
// It manages synchronous classification, extraction, and persistence, and
// concurrent embedding generation.
type Pipeline struct {
	documents     storage.DocumentRepository
	embeddings    storage.EmbeddingRepository
	fulltext      storage.FullTextRepository
	extractor     extract.Extractor
	pool          *ants.Pool
	embeddingProc *embeddingProcessor
	pollInterval  time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	watchers map[core.ID]*Receipt
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	embeddings storage.EmbeddingRepository,
	fulltext storage.FullTextRepository,
	extractor extract.Extractor,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if fulltext == nil {
		return nil, ErrFullTextRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		documents:    documents,
		embeddings:   embeddings,
		fulltext:     fulltext,
		extractor:    extractor,
		pool:         pool,
		pollInterval: defaultPollInterval,
		logger:       slog.Default(),
		watchers:     make(map[core.ID]*Receipt),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processor after options are applied (so it gets the final logger)
	proc, err := newEmbeddingProcessor(documents, embeddings, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = proc

	return p, nil
}

// Ingest classifies, extracts, and persists an uploaded document, then
// submits it for asynchronous embedding generation.
//
// Unsupported file types fail before any state is created. Extraction
// failures are survivable: the document row is stored without content and
// no embedding is generated. The returned Receipt settles once the
// document reaches a terminal status.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte) (*core.Document, *Receipt, error) {
	fileType, err := core.FileTypeFromFilename(filename)
	if err != nil {
		return nil, nil, err
	}

	doc := &core.Document{
		Filename: filename,
		FileType: fileType,
		FileSize: int64(len(data)),
		Status:   core.StatusProcessing,
	}

	text, err := p.extractor.Extract(ctx, data, fileType)
	if err != nil {
		p.logger.Warn("content extraction failed", "filename", filename, "err", err)
	} else if text != "" {
		doc.Content = text
		doc.HasContent = true
		doc.ContentHash = core.HashContent(text)
	}

	added, err := p.documents.AddDocument(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	if added.HasContent {
		if indexErr := p.fulltext.IndexDocument(ctx, added); indexErr != nil {
			p.logger.Error("full-text indexing failed", "document", added.Id, "err", indexErr)
		}
	}

	receipt := newReceipt(added.Id)
	p.mu.Lock()
	p.watchers[added.Id] = receipt
	p.mu.Unlock()

	// Submit for async processing. If the pool rejects the task the
	// receipt must still settle, so finish inline.
	if submitErr := p.pool.Submit(func() { p.finish(receipt) }); submitErr != nil {
		p.logger.Error("error submitting embedding task", "document", added.Id, "err", submitErr)
		p.finish(receipt)
	}

	return added, receipt, nil
}

// finish runs the background half of ingestion: embedding generation and
// the transition to a terminal status. Errors are logged, never propagated.
func (p *Pipeline) finish(receipt *Receipt) {
	ctx := context.Background()
	id := receipt.DocumentId()

	status := core.StatusCompleted
	if err := p.embeddingProc.process(ctx, id); err != nil {
		p.logger.Error("error processing embedding", "document", id, "err", err)
		status = core.StatusFailed
	}

	if _, err := p.documents.UpdateDocumentStatus(ctx, id, status); err != nil {
		p.logger.Error("error updating document status", "document", id, "err", err)
	}

	p.mu.Lock()
	delete(p.watchers, id)
	p.mu.Unlock()
	receipt.settle(status)
}

// WaitForDocument blocks until the document reaches a terminal status or
// the timeout elapses. When an in-process receipt exists for the document
// it waits on the receipt's channel; otherwise it polls storage.
//
// Returns ErrWaitTimeout on deadline; the background work is not cancelled.
func (p *Pipeline) WaitForDocument(ctx context.Context, id core.ID, timeout time.Duration) (core.DocumentStatus, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	p.mu.Lock()
	receipt := p.watchers[id]
	p.mu.Unlock()

	if receipt != nil {
		select {
		case <-receipt.Done():
			return receipt.Status(), nil
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", ErrWaitTimeout
		}
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		doc, err := p.documents.GetDocument(ctx, id)
		if err != nil {
			return "", err
		}
		if doc.Status.Terminal() {
			return doc.Status, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", ErrWaitTimeout
		case <-ticker.C:
		}
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
