// Package reembed provides functionality for reembedding existing documents
// with new or updated embedding models.
//
// This package supports batch processing of documents, progress tracking,
// retry logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search. New embeddings are inserted
// under the new model identifier; superseded rows are retained and ignored
// by retrieval.
package reembed
