package core

import (
	"testing"
)

func TestHashContent_Deterministic(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "simple content",
			content: "quarterly report",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "Q3 revenue rose 12% compared to the previous quarter, driven by subscription growth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h1 := HashContent(tt.content)
			h2 := HashContent(tt.content)

			if h1 != h2 {
				t.Errorf("HashContent() produced different digests for same content: %s vs %s", h1, h2)
			}
			if len(h1) != 64 {
				t.Errorf("HashContent() digest length = %d, want 64 hex chars", len(h1))
			}
		})
	}
}

func TestHashContent_ContentSensitive(t *testing.T) {
	h1 := HashContent("Q3 revenue rose 12%")
	h2 := HashContent("Q3 revenue rose 13%")

	if h1 == h2 {
		t.Errorf("HashContent() produced same digest for different content")
	}
}

func TestFileTypeFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     FileType
		wantErr  bool
	}{
		{name: "pdf", filename: "report.pdf", want: FileTypePDF},
		{name: "uppercase extension", filename: "NOTES.TXT", want: FileTypeTXT},
		{name: "png", filename: "scan.png", want: FileTypePNG},
		{name: "jpg", filename: "photo.jpg", want: FileTypeJPG},
		{name: "jpeg", filename: "photo.jpeg", want: FileTypeJPEG},
		{name: "nested path", filename: "archive/2025/report.pdf", want: FileTypePDF},
		{name: "unsupported docx", filename: "report.docx", wantErr: true},
		{name: "no extension", filename: "report", wantErr: true},
		{name: "dotfile", filename: ".gitignore", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileTypeFromFilename(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Errorf("FileTypeFromFilename(%q) expected error, got %q", tt.filename, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("FileTypeFromFilename(%q) unexpected error: %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("FileTypeFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestDocumentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from DocumentStatus
		to   DocumentStatus
		want bool
	}{
		{name: "pending to processing", from: StatusPending, to: StatusProcessing, want: true},
		{name: "processing to completed", from: StatusProcessing, to: StatusCompleted, want: true},
		{name: "processing to failed", from: StatusProcessing, to: StatusFailed, want: true},
		{name: "completed never regresses", from: StatusCompleted, to: StatusProcessing, want: false},
		{name: "completed to failed rejected", from: StatusCompleted, to: StatusFailed, want: false},
		{name: "failed to completed rejected", from: StatusFailed, to: StatusCompleted, want: false},
		{name: "processing to pending rejected", from: StatusProcessing, to: StatusPending, want: false},
		{name: "self transition rejected", from: StatusProcessing, to: StatusProcessing, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDocumentStatus_Terminal(t *testing.T) {
	if StatusProcessing.Terminal() {
		t.Error("processing should not be terminal")
	}
	if StatusPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	if !StatusCompleted.Terminal() {
		t.Error("completed should be terminal")
	}
	if !StatusFailed.Terminal() {
		t.Error("failed should be terminal")
	}
}
