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


// Package search provides retrieval over ingested documents.
//
// The Engine type implements three retrieval modes:
//   - Vector search using query embeddings and cosine distance
//   - Full-text search using keyword relevance
//   - Hybrid search fusing both rankings under a weighted blend
//
// Hybrid search over-fetches both rankings at twice the requested limit,
// blends per-document scores (0.6 vector, 0.4 full-text, missing signals
// count as zero), and truncates to the limit. File type and date filters
// apply before truncation in every mode. Each top-level call records a
// search audit log; audit failures never fail the search.
package search
