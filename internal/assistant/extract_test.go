package assistant

import (
	"testing"

	errors "github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestPlainTextExtractor(t *testing.T) {
	t.Parallel()

	extractor := PlainTextExtractor{}

	text, err := extractor.Extract(DocumentRecord{
		FileName:    "notes.txt",
		ContentType: "text/plain",
		RawBytes:    []byte("hello"),
	})
	require.NoError(t, err)
	require.Equal(t, "hello", text)

	// extension is enough when the content type is generic
	text, err = extractor.Extract(DocumentRecord{
		FileName:    "README.md",
		ContentType: "application/octet-stream",
		RawBytes:    []byte("# title"),
	})
	require.NoError(t, err)
	require.Equal(t, "# title", text)
}

func TestPlainTextExtractorUnsupported(t *testing.T) {
	t.Parallel()

	extractor := PlainTextExtractor{}

	_, err := extractor.Extract(DocumentRecord{
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		RawBytes:    []byte("%PDF-1.7"),
	})

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	require.Equal(t, "report.pdf", unsupported.FileName)
	require.Equal(t, "application/pdf", unsupported.ContentType)
}

func TestPlainTextExtractorInvalidUTF8(t *testing.T) {
	t.Parallel()

	extractor := PlainTextExtractor{}

	_, err := extractor.Extract(DocumentRecord{
		FileName:    "data.txt",
		ContentType: "text/plain",
		RawBytes:    []byte{0xff, 0xfe, 0xfd},
	})

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
}
