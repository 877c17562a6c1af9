package assistant

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// TextExtractor turns uploaded file bytes into plain text. Format-specific
// extraction (PDF, office formats) is an external collaborator behind this
// interface; a failed extraction aborts ingestion before any index write.
type TextExtractor interface {
	Extract(record DocumentRecord) (string, error)
}

// PlainTextExtractor accepts UTF-8 text formats and rejects everything else
// with an UnsupportedFormatError.
type PlainTextExtractor struct{}

var plainTextExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".csv":      {},
	".log":      {},
	".json":     {},
	".yaml":     {},
	".yml":      {},
}

// Extract returns the document bytes as text when the format is a known
// plain-text one and the payload is valid UTF-8.
func (PlainTextExtractor) Extract(record DocumentRecord) (string, error) {
	if !isPlainText(record) {
		return "", &UnsupportedFormatError{
			FileName:    record.FileName,
			ContentType: record.ContentType,
		}
	}
	if !utf8.Valid(record.RawBytes) {
		return "", &UnsupportedFormatError{
			FileName:    record.FileName,
			ContentType: record.ContentType,
		}
	}
	return string(record.RawBytes), nil
}

func isPlainText(record DocumentRecord) bool {
	if strings.HasPrefix(strings.ToLower(record.ContentType), "text/") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(record.FileName))
	_, ok := plainTextExtensions[ext]
	return ok
}
