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


package badger

import "github.com/poiesic/docsift/storage"

// MemoryRepositories bundles every repository over a shared in-memory
// backend for testing.
type MemoryRepositories struct {
	Documents  storage.DocumentRepository
	Embeddings storage.EmbeddingRepository
	FullText   storage.FullTextRepository
	Audit      storage.AuditRepository
	Workflows  storage.WorkflowRepository

	backend *Backend
	docRepo *DocumentRepository
	embRepo *EmbeddingRepository
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close when done.
func NewMemoryRepositories() (*MemoryRepositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	docRepo, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embRepo, err := NewEmbeddingRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	return &MemoryRepositories{
		Documents:  docRepo,
		Embeddings: embRepo,
		FullText:   NewFullTextRepository(backend),
		Audit:      NewAuditRepository(backend),
		Workflows:  NewWorkflowRepository(backend),
		backend:    backend,
		docRepo:    docRepo,
		embRepo:    embRepo,
	}, nil
}

// Close releases sequences and the underlying backend.
func (m *MemoryRepositories) Close() error {
	m.docRepo.Close()
	m.embRepo.Close()
	return m.backend.Close()
}
