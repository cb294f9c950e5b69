package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences.
type ID uint64

// HashContent computes a deterministic digest of extracted text content
// using BLAKE2b-256 over the UTF-8 bytes. Identical content always produces
// the identical digest, so the hash can later serve duplicate detection and
// integrity checks.
func HashContent(text string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// FileType identifies the declared format of an uploaded document.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeTXT  FileType = "txt"
	FileTypePNG  FileType = "png"
	FileTypeJPG  FileType = "jpg"
	FileTypeJPEG FileType = "jpeg"
)

// Valid reports whether ft is one of the supported file types.
func (ft FileType) Valid() bool {
	switch ft {
	case FileTypePDF, FileTypeTXT, FileTypePNG, FileTypeJPG, FileTypeJPEG:
		return true
	}
	return false
}

// DocumentStatus tracks a document through the ingestion lifecycle.
// The lifecycle is monotonic: pending -> processing -> {completed, failed}.
// A terminal status never regresses.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Terminal reports whether no further automatic transition occurs.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next respects the
// monotonic lifecycle order.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCompleted || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Document represents an ingested upload and its extracted content.
// Content is nullable: extraction may fail or be unsupported for the
// declared type, in which case HasContent is false and ContentHash is empty.
type Document struct {
	Id          ID
	Filename    string
	FileType    FileType
	FileSize    int64
	Content     string
	HasContent  bool
	ContentHash string
	Status      DocumentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Embedding is a fixed-length vector representation of a document's content.
// The latest embedding per (document, model) is authoritative; older rows
// for superseded models are kept and simply ignored by retrieval.
type Embedding struct {
	Id         ID
	DocumentId ID
	Vector     []float32
	Model      string
	CreatedAt  time.Time
}

// SearchMode selects a retrieval strategy.
type SearchMode string

const (
	ModeVector   SearchMode = "vector"
	ModeFullText SearchMode = "fulltext"
	ModeHybrid   SearchMode = "hybrid"
)

// Valid reports whether m names a known retrieval strategy.
func (m SearchMode) Valid() bool {
	return m == ModeVector || m == ModeFullText || m == ModeHybrid
}

// SearchResult is a transient ranked hit. Before fusion at most one of
// Similarity/Relevance is populated depending on the originating mode;
// hybrid search overwrites Similarity with the blended score.
type SearchResult struct {
	DocumentId ID
	Filename   string
	Content    string
	Similarity float64
	Relevance  float64
	CreatedAt  time.Time
}

// NearestMatch is a raw vector-index hit carrying the distance under the
// index metric. The retrieval engine converts distance to similarity.
type NearestMatch struct {
	DocumentId ID
	Filename   string
	Content    string
	HasContent bool
	Distance   float64
	CreatedAt  time.Time
}

// TextMatch is a raw full-text hit with the store's native relevance score.
type TextMatch struct {
	DocumentId ID
	Filename   string
	Content    string
	Relevance  float64
	CreatedAt  time.Time
}

// SearchLog is an audit record of a single top-level search call.
type SearchLog struct {
	Id          string
	Query       string
	Mode        SearchMode
	ResultCount int
	DurationMS  int64
	CreatedAt   time.Time
}

// WorkflowStatus tracks a workflow execution's lifecycle.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// WorkflowExecution is a persisted audit record of a workflow run.
type WorkflowExecution struct {
	Id          string
	Name        string
	DocumentId  ID
	Status      WorkflowStatus
	Output      map[string]string
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
	DurationMS  int64
}

// ActionType identifies an outbound integration.
type ActionType string

const (
	ActionSlackNotification ActionType = "slack_notification"
	ActionCalendarEvent     ActionType = "calendar_event"
	ActionEmail             ActionType = "email"
	ActionWebhook           ActionType = "webhook"
)

// ActionStatus tracks delivery of an external action.
type ActionStatus string

const (
	ActionPending ActionStatus = "pending"
	ActionSent    ActionStatus = "sent"
	ActionFailed  ActionStatus = "failed"
)

// ExternalAction is a persisted audit record of a fire-and-forget side
// effect triggered by a workflow. No delivery guarantee is implied.
type ExternalAction struct {
	Id         string
	WorkflowId string
	Type       ActionType
	Payload    map[string]string
	Status     ActionStatus
	Response   string
	CreatedAt  time.Time
	ExecutedAt time.Time
}
