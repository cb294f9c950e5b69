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


package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileTypeFromFilename classifies an upload by its filename extension.
// Returns ErrUnsupportedFileType for extensions outside the supported set;
// callers must reject such uploads before creating any state.
func FileTypeFromFilename(filename string) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ft := FileType(strings.TrimPrefix(ext, "."))
	if !ft.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	return ft, nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Filename must not be empty
//   - FileType must be one of the supported types
//   - FileSize must not be negative
//   - ContentHash must be empty when HasContent is false
//
// NOT validated (populated by the pipeline):
//   - Status (set by the ingestion state machine)
//   - ID (0 is valid before the database sequence assigns one)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if !doc.FileType.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidDocument, ErrUnsupportedFileType, doc.FileType)
	}

	if doc.FileSize < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrNegativeFileSize)
	}

	if !doc.HasContent && doc.ContentHash != "" {
		return fmt.Errorf("%w: content hash present without content", ErrInvalidDocument)
	}

	return nil
}

// ValidateEmbedding validates an Embedding according to domain rules.
//
// Validation rules:
//   - DocumentId must reference a document (non-zero)
//   - Vector must not be empty
//   - Model identifier must not be empty
func ValidateEmbedding(emb *Embedding) error {
	if emb == nil {
		return fmt.Errorf("%w: embedding is nil", ErrInvalidEmbedding)
	}

	if emb.DocumentId == 0 {
		return fmt.Errorf("%w: document id required", ErrInvalidEmbedding)
	}

	if len(emb.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyVector)
	}

	if emb.Model == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyModel)
	}

	return nil
}

// ValidateTransition checks a status change against the monotonic lifecycle.
func ValidateTransition(from, to DocumentStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusRegression, from, to)
	}
	return nil
}
