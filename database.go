// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docsift

import (
	"io"
	"log/slog"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/ai/openai"
	"github.com/poiesic/docsift/extract"
	"github.com/poiesic/docsift/ingestion"
	"github.com/poiesic/docsift/reembed"
	"github.com/poiesic/docsift/search"
	"github.com/poiesic/docsift/storage"
	"github.com/poiesic/docsift/storage/badger"
	"github.com/poiesic/docsift/workflow"
)

// Database bundles the storage backend, repositories, AI provider, and
// content extractor behind one lifecycle.
type Database struct {
	backend    *badger.Backend
	documents  storage.DocumentRepository
	embeddings storage.EmbeddingRepository
	fulltext   storage.FullTextRepository
	audit      storage.AuditRepository
	workflows  storage.WorkflowRepository
	provider   ai.Provider
	extractor  extract.Extractor
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	provider  ai.Provider
	extractor extract.Extractor
}

// WithAIConfig sets the configuration used to build the default AI
// provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses the given AI provider instead of building one from
// configuration. The database takes ownership and closes it.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithExtractor sets the content extractor, allowing PDF and OCR backends
// to be wired in.
func WithExtractor(extractor extract.Extractor) DatabaseOption {
	return func(o *databaseOptions) {
		o.extractor = extractor
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embeddings, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			embeddings.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	extractor := options.extractor
	if extractor == nil {
		extractor = extract.NewExtractor()
	}

	return &Database{
		backend:    backend,
		documents:  documents,
		embeddings: embeddings,
		fulltext:   badger.NewFullTextRepository(backend),
		audit:      badger.NewAuditRepository(backend),
		workflows:  badger.NewWorkflowRepository(backend),
		provider:   provider,
		extractor:  extractor,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories holding sequences
	if err := db.embeddings.Close(); err != nil {
		db.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := db.documents.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documents
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeddings
}

func (db *Database) FullTextRepository() storage.FullTextRepository {
	return db.fulltext
}

func (db *Database) AuditRepository() storage.AuditRepository {
	return db.audit
}

func (db *Database) WorkflowRepository() storage.WorkflowRepository {
	return db.workflows
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documents, db.embeddings, db.fulltext, db.extractor, db.provider, opts...)
}

func (db *Database) NewSearchEngine(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(db.documents, db.embeddings, db.fulltext, db.audit, db.provider, opts...)
}

func (db *Database) NewActionDispatcher(opts ...workflow.DispatcherOption) (*workflow.ActionDispatcher, error) {
	return workflow.NewActionDispatcher(db.workflows, opts...)
}

func (db *Database) NewOrchestrator(pipeline *ingestion.Pipeline, engine *search.Engine, dispatcher *workflow.ActionDispatcher, opts ...workflow.Option) (*workflow.Orchestrator, error) {
	return workflow.NewOrchestrator(pipeline, engine, db.documents, db.workflows, db.provider.Analyzer(), dispatcher, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.documents, db.embeddings, db.provider.Embedder(), config, progress)
}
