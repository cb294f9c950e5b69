package core

import (
	"errors"
	"testing"
	"time"
)

func validDocument() *Document {
	return &Document{
		Filename:    "report.pdf",
		FileType:    FileTypePDF,
		FileSize:    2048,
		Content:     "Q3 revenue rose 12%",
		HasContent:  true,
		ContentHash: HashContent("Q3 revenue rose 12%"),
		Status:      StatusProcessing,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr error
	}{
		{
			name:   "valid document",
			mutate: func(d *Document) {},
		},
		{
			name: "valid without content",
			mutate: func(d *Document) {
				d.Content = ""
				d.HasContent = false
				d.ContentHash = ""
			},
		},
		{
			name:    "empty filename",
			mutate:  func(d *Document) { d.Filename = "" },
			wantErr: ErrEmptyFilename,
		},
		{
			name:    "unknown file type",
			mutate:  func(d *Document) { d.FileType = "docx" },
			wantErr: ErrUnsupportedFileType,
		},
		{
			name:    "negative size",
			mutate:  func(d *Document) { d.FileSize = -1 },
			wantErr: ErrNegativeFileSize,
		},
		{
			name: "hash without content",
			mutate: func(d *Document) {
				d.HasContent = false
				d.ContentHash = "abc"
			},
			wantErr: ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)

			err := ValidateDocument(doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("ValidateDocument() error %v should wrap ErrInvalidDocument", err)
			}
		})
	}
}

func TestValidateDocument_Nil(t *testing.T) {
	if err := ValidateDocument(nil); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("ValidateDocument(nil) error = %v, want ErrInvalidDocument", err)
	}
}

func TestValidateEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		emb     *Embedding
		wantErr error
	}{
		{
			name: "valid embedding",
			emb: &Embedding{
				DocumentId: 1,
				Vector:     []float32{0.1, 0.2, 0.3},
				Model:      "all-MiniLM-L6-v2",
			},
		},
		{
			name:    "nil embedding",
			emb:     nil,
			wantErr: ErrInvalidEmbedding,
		},
		{
			name: "missing document id",
			emb: &Embedding{
				Vector: []float32{0.1},
				Model:  "all-MiniLM-L6-v2",
			},
			wantErr: ErrInvalidEmbedding,
		},
		{
			name: "empty vector",
			emb: &Embedding{
				DocumentId: 1,
				Model:      "all-MiniLM-L6-v2",
			},
			wantErr: ErrEmptyVector,
		},
		{
			name: "empty model",
			emb: &Embedding{
				DocumentId: 1,
				Vector:     []float32{0.1},
			},
			wantErr: ErrEmptyModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbedding(tt.emb)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEmbedding() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbedding() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(StatusProcessing, StatusCompleted); err != nil {
		t.Errorf("ValidateTransition(processing, completed) unexpected error: %v", err)
	}
	err := ValidateTransition(StatusCompleted, StatusProcessing)
	if !errors.Is(err, ErrStatusRegression) {
		t.Errorf("ValidateTransition(completed, processing) error = %v, want ErrStatusRegression", err)
	}
}
