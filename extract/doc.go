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


// Package extract turns uploaded file bytes into plain text.
//
// Plain text files are decoded as UTF-8 directly. PDF and image (OCR)
// extraction are delegated to injected TextFunc backends so deployments
// can choose their own tooling without this package taking the
// dependency.
//
// The ingestion pipeline treats extraction failure as survivable: a
// document whose bytes cannot be read still gets a row, with no content.
package extract
