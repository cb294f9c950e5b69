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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidEmbedding indicates an Embedding failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrUnsupportedFileType indicates a filename extension outside the
	// supported set. Rejected synchronously before any state is created.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrNegativeFileSize indicates a negative FileSize value.
	ErrNegativeFileSize = errors.New("file size cannot be negative")

	// ErrEmptyVector indicates an embedding with no components.
	ErrEmptyVector = errors.New("embedding vector cannot be empty")

	// ErrEmptyModel indicates an embedding without a model identifier.
	ErrEmptyModel = errors.New("embedding model cannot be empty")

	// ErrStatusRegression indicates an attempt to move a document status
	// backwards along the lifecycle or out of a terminal state.
	ErrStatusRegression = errors.New("document status cannot regress")
)
