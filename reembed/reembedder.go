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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder re-embeds every document's content with the configured
// embedder. New embedding rows are written under the embedder's model;
// existing rows for other models are left in place.
type Reembedder struct {
	documents  storage.DocumentRepository
	embeddings storage.EmbeddingRepository
	embedder   ai.Embedder
	config     *Config
	progress   io.Writer
	processor  *BatchProcessor
	iterator   *DocumentIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(documents storage.DocumentRepository, embeddings storage.EmbeddingRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(embeddings, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewDocumentIterator(documents, config.BatchSize)

	return &Reembedder{
		documents:  documents,
		embeddings: embeddings,
		embedder:   embedder,
		config:     config,
		progress:   progress,
		processor:  processor,
		iterator:   iterator,
	}
}

// Run executes the reembedding operation.
// Every document with content is reembedded under the configured embedder's
// model. Documents without content count toward progress but are skipped.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	// First, count total documents
	startTime := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	allDocs, err := r.documents.GetDocumentsByDateRange(ctx, startTime, endTime)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}

	totalDocs := len(allDocs)
	if totalDocs == 0 {
		fmt.Fprintf(r.progress, "No documents found in database (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents with model %s (batch size: %d)\n",
		totalDocs, r.embedder.Model(), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalDocs, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	embedded := 0

	err = r.iterator.ForEach(ctx, func(docs []*core.Document) error {
		n, err := r.processor.Process(ctx, docs)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		embedded += n
		processed += len(docs)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Embedded %d of %d documents in %v (%.1f documents/sec)\n",
		embedded, totalDocs, elapsed.Round(time.Second), float64(totalDocs)/elapsed.Seconds())

	return nil
}
