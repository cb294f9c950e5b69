package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docsift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainText(t *testing.T) {
	e := NewExtractor()

	text, err := e.Extract(context.Background(), []byte("hello world"), core.FileTypeTXT)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	e := NewExtractor()

	_, err := e.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, core.FileTypeTXT)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtract_PDFBackend(t *testing.T) {
	t.Run("no backend wired", func(t *testing.T) {
		e := NewExtractor()
		_, err := e.Extract(context.Background(), []byte("%PDF-1.4"), core.FileTypePDF)
		assert.ErrorIs(t, err, ErrNoExtractor)
	})

	t.Run("backend succeeds", func(t *testing.T) {
		e := NewExtractor(WithPDFText(func(ctx context.Context, data []byte) (string, error) {
			return "  page text\n", nil
		}))
		text, err := e.Extract(context.Background(), []byte("%PDF-1.4"), core.FileTypePDF)
		require.NoError(t, err)
		assert.Equal(t, "page text", text)
	})

	t.Run("backend fails", func(t *testing.T) {
		e := NewExtractor(WithPDFText(func(ctx context.Context, data []byte) (string, error) {
			return "", errors.New("corrupt xref")
		}))
		_, err := e.Extract(context.Background(), []byte("%PDF-1.4"), core.FileTypePDF)
		assert.ErrorIs(t, err, ErrExtractionFailed)
	})
}

func TestExtract_ImageBackend(t *testing.T) {
	e := NewExtractor(WithImageText(func(ctx context.Context, data []byte) (string, error) {
		return "scanned words", nil
	}))

	for _, ft := range []core.FileType{core.FileTypePNG, core.FileTypeJPG, core.FileTypeJPEG} {
		text, err := e.Extract(context.Background(), []byte{0x89}, ft)
		require.NoError(t, err)
		assert.Equal(t, "scanned words", text)
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract(context.Background(), []byte("data"), core.FileType("docx"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFileType)
}
