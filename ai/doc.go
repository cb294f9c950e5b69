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


// Package ai provides abstractions for AI services used in docsift.
//
// This package defines interfaces for AI operations including text embeddings
// and document analysis. It follows the dependency inversion principle,
// allowing the core domain and business logic to depend on abstractions
// rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Analyzer: Produces structured analysis of document content
//   - Provider: Aggregates AI services for convenient initialization
//
// # Implementations
//
//   - ai/openai: Production implementation for OpenAI-compatible APIs
//     (Ollama, LocalAI, vLLM, OpenAI)
//   - ai/mock: Deterministic test doubles
//
// # Configuration
//
// Config carries the host and model identifiers for both services. Use
// NewConfig with functional options:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	)
package ai
