// Package ingestion provides pipeline orchestration for processing uploaded
// documents.
//
// The Pipeline type manages the document lifecycle, including:
//   - Classifying uploads by file type
//   - Extracting text content (failure is survivable)
//   - Persisting the document with a processing status
//   - Indexing extracted content for keyword search
//   - Generating embeddings asynchronously
//
// Embedding generation runs on a worker pool. A successful run moves the
// document to completed; a failed run moves it to failed. Errors during
// async processing are logged but never propagated to the caller; the
// Receipt returned by Ingest is the observable completion handle.
package ingestion
