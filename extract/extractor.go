package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docsift/core"
)

// Extractor pulls plain text out of uploaded file bytes.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract returns the text content of data interpreted as fileType.
	// Returns ErrNoExtractor when no extractor is wired for the type and
	// ErrExtractionFailed (wrapped) when the extractor itself fails.
	Extract(ctx context.Context, data []byte, fileType core.FileType) (string, error)
}

// TextFunc extracts text from raw file bytes. Used to plug in PDF and OCR
// backends without binding this package to a particular library.
type TextFunc func(ctx context.Context, data []byte) (string, error)

// TypeExtractor dispatches extraction by file type.
type TypeExtractor struct {
	pdfText   TextFunc
	imageText TextFunc
	logger    *slog.Logger
}

var _ Extractor = (*TypeExtractor)(nil)

// Option configures a TypeExtractor.
type Option func(*TypeExtractor)

// WithPDFText sets the PDF text extraction backend.
func WithPDFText(fn TextFunc) Option {
	return func(e *TypeExtractor) {
		e.pdfText = fn
	}
}

// WithImageText sets the image OCR backend.
func WithImageText(fn TextFunc) Option {
	return func(e *TypeExtractor) {
		e.imageText = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *TypeExtractor) {
		e.logger = logger
	}
}

// NewExtractor creates a TypeExtractor. Plain text works out of the box;
// PDF and image extraction require backends wired via options.
func NewExtractor(opts ...Option) *TypeExtractor {
	e := &TypeExtractor{
		logger: slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the text content of data interpreted as fileType.
func (e *TypeExtractor) Extract(ctx context.Context, data []byte, fileType core.FileType) (string, error) {
	switch fileType {
	case core.FileTypeTXT:
		return e.extractPlainText(data)
	case core.FileTypePDF:
		if e.pdfText == nil {
			return "", fmt.Errorf("%w: %s", ErrNoExtractor, fileType)
		}
		text, err := e.pdfText(ctx, data)
		if err != nil {
			return "", fmt.Errorf("%w: pdf: %w", ErrExtractionFailed, err)
		}
		return strings.TrimSpace(text), nil
	case core.FileTypePNG, core.FileTypeJPG, core.FileTypeJPEG:
		if e.imageText == nil {
			return "", fmt.Errorf("%w: %s", ErrNoExtractor, fileType)
		}
		text, err := e.imageText(ctx, data)
		if err != nil {
			return "", fmt.Errorf("%w: ocr: %w", ErrExtractionFailed, err)
		}
		return strings.TrimSpace(text), nil
	default:
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedFileType, fileType)
	}
}

// extractPlainText decodes data as UTF-8 text.
func (e *TypeExtractor) extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid utf-8", ErrExtractionFailed)
	}
	return string(data), nil
}
