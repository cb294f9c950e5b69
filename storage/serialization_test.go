package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docsift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &core.Document{
		Id:          core.ID(42),
		Filename:    "report.pdf",
		FileType:    core.FileTypePDF,
		FileSize:    2048,
		Content:     "Q3 revenue rose 12% üìà",
		HasContent:  true,
		ContentHash: core.HashContent("Q3 revenue rose 12% üìà"),
		Status:      core.StatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data := MarshalDocument(doc)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, doc.Id, decoded.Id)
	assert.Equal(t, doc.Filename, decoded.Filename)
	assert.Equal(t, doc.FileType, decoded.FileType)
	assert.Equal(t, doc.Content, decoded.Content)
	assert.Equal(t, doc.ContentHash, decoded.ContentHash)
	assert.Equal(t, doc.Status, decoded.Status)
	assert.True(t, doc.CreatedAt.Equal(decoded.CreatedAt))
}

func TestUnmarshalDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDocument(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalEmbedding(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	emb := &core.Embedding{
		Id:         core.ID(7),
		DocumentId: core.ID(42),
		Vector:     []float32{0.1, -0.2, 0.3},
		Model:      "all-MiniLM-L6-v2",
		CreatedAt:  now,
	}

	data := MarshalEmbedding(emb)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalEmbedding(data)
	require.NoError(t, err)
	assert.Equal(t, emb.DocumentId, decoded.DocumentId)
	assert.Equal(t, emb.Vector, decoded.Vector)
	assert.Equal(t, emb.Model, decoded.Model)
}

func TestMarshalUnmarshalSearchLog(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	log := &core.SearchLog{
		Id:          "0d9f1a3e-1111-4222-8333-444455556666",
		Query:       "quarterly revenue",
		Mode:        core.ModeHybrid,
		ResultCount: 5,
		DurationMS:  37,
		CreatedAt:   now,
	}

	data := MarshalSearchLog(log)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalSearchLog(data)
	require.NoError(t, err)
	assert.Equal(t, log.Id, decoded.Id)
	assert.Equal(t, log.Query, decoded.Query)
	assert.Equal(t, log.Mode, decoded.Mode)
	assert.Equal(t, log.ResultCount, decoded.ResultCount)
}

func TestMarshalUnmarshalExternalAction(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	action := &core.ExternalAction{
		Id:         "a1b2c3d4-0000-4000-8000-000000000002",
		WorkflowId: "b7a9e9a0-0000-4000-8000-000000000001",
		Type:       core.ActionSlackNotification,
		Payload:    map[string]string{"channel": "#docs", "message": "processed"},
		Status:     core.ActionSent,
		Response:   "ok",
		CreatedAt:  now,
		ExecutedAt: now,
	}

	data := MarshalExternalAction(action)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalExternalAction(data)
	require.NoError(t, err)
	assert.Equal(t, action.Id, decoded.Id)
	assert.Equal(t, action.Type, decoded.Type)
	assert.Equal(t, action.Payload, decoded.Payload)
	assert.Equal(t, action.Status, decoded.Status)
}
