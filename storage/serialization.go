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


package storage

import (
	"github.com/poiesic/docsift/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalEmbedding serializes an Embedding to bytes.
func MarshalEmbedding(emb *core.Embedding) []byte {
	buf := make([]byte, core.EmbeddingMUS.Size(*emb))
	core.EmbeddingMUS.Marshal(*emb, buf)
	return buf
}

// UnmarshalEmbedding deserializes an Embedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.Embedding, error) {
	emb, _, err := core.EmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &emb, nil
}

// MarshalSearchLog serializes a SearchLog to bytes.
func MarshalSearchLog(log *core.SearchLog) []byte {
	buf := make([]byte, core.SearchLogMUS.Size(*log))
	core.SearchLogMUS.Marshal(*log, buf)
	return buf
}

// UnmarshalSearchLog deserializes a SearchLog from bytes.
func UnmarshalSearchLog(data []byte) (*core.SearchLog, error) {
	log, _, err := core.SearchLogMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// MarshalWorkflowExecution serializes a WorkflowExecution to bytes.
func MarshalWorkflowExecution(wf *core.WorkflowExecution) []byte {
	buf := make([]byte, core.WorkflowExecutionMUS.Size(*wf))
	core.WorkflowExecutionMUS.Marshal(*wf, buf)
	return buf
}

// UnmarshalWorkflowExecution deserializes a WorkflowExecution from bytes.
func UnmarshalWorkflowExecution(data []byte) (*core.WorkflowExecution, error) {
	wf, _, err := core.WorkflowExecutionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// MarshalExternalAction serializes an ExternalAction to bytes.
func MarshalExternalAction(action *core.ExternalAction) []byte {
	buf := make([]byte, core.ExternalActionMUS.Size(*action))
	core.ExternalActionMUS.Marshal(*action, buf)
	return buf
}

// UnmarshalExternalAction deserializes an ExternalAction from bytes.
func UnmarshalExternalAction(data []byte) (*core.ExternalAction, error) {
	action, _, err := core.ExternalActionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &action, nil
}
