package assistant

import (
	"fmt"

	errors "github.com/Laisky/errors/v2"
)

var (
	// ErrEmptyInput is returned before any provider call when the text to
	// embed is empty or whitespace-only.
	ErrEmptyInput = errors.New("input text is empty")
	// ErrEmptyQuery rejects retrieval requests with no query text.
	ErrEmptyQuery = errors.New("query is empty")
)

// ProviderError wraps an embedding provider failure. Retries are the
// caller's responsibility.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// GenerationError wraps a chat-completion provider failure. It is surfaced
// to the caller as a user-visible error, never swallowed into an empty answer.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UnsupportedFormatError indicates document text extraction failed before
// any index write happened.
type UnsupportedFormatError struct {
	FileName    string
	ContentType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q for %q", e.ContentType, e.FileName)
}

// IndexUnavailableError indicates the vector store is unreachable or
// misconfigured. Fatal for the calling request, not retried transparently.
type IndexUnavailableError struct {
	Op  string
	Err error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("vector index %s: %v", e.Op, e.Err)
}

func (e *IndexUnavailableError) Unwrap() error { return e.Err }

// PartialBatchError reports a document ingestion that made some chunk
// batches durable before a later step failed. Earlier writes are valid,
// self-consistent index entries and are never rolled back.
type PartialBatchError struct {
	Written int
	Total   int
	Err     error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("ingested %d of %d chunks: %v", e.Written, e.Total, e.Err)
}

func (e *PartialBatchError) Unwrap() error { return e.Err }
