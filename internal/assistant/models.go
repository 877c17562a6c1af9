package assistant

import (
	"fmt"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// SourceType discriminates the two kinds of indexed sources.
type SourceType string

const (
	SourceTypeMessage  SourceType = "message"
	SourceTypeDocument SourceType = "document"
)

// MessageRecord is a chat message to be made searchable. Messages are
// assumed short and produce exactly one index entry, keyed by message ID.
type MessageRecord struct {
	ID          string
	AuthorName  string
	ChannelName string
	CreatedAt   time.Time
	TextContent string
	IsReply     bool
	ParentID    string
}

// DocumentRecord is an uploaded file to be chunked and indexed.
type DocumentRecord struct {
	ID          string
	FileName    string
	ContentType string
	AuthorName  string
	ChannelName string
	CreatedAt   time.Time
	RawBytes    []byte
}

// EntryMetadata is the denormalized provenance stored beside each vector.
// SourceType must be switched exhaustively wherever metadata is rendered
// into context text.
type EntryMetadata struct {
	Content     string     `json:"content"`
	SourceID    string     `json:"sourceId"`
	SourceType  SourceType `json:"sourceType"`
	AuthorName  string     `json:"authorName"`
	ChannelName string     `json:"channelName"`
	CreatedAt   time.Time  `json:"createdAt"`
	IsReply     bool       `json:"isReply,omitempty"`
	ParentID    string     `json:"parentId,omitempty"`
	FileName    string     `json:"fileName,omitempty"`
	ChunkIndex  *int       `json:"chunkIndex,omitempty"`
	PageNumber  *int       `json:"pageNumber,omitempty"`
}

// IndexEntry is the unit stored in the vector index. ID is deterministic
// from the source so re-ingestion overwrites instead of duplicating.
type IndexEntry struct {
	ID       string
	Vector   pgvector.Vector
	Metadata EntryMetadata
}

// ChunkEntryID builds the deterministic index ID for one document chunk.
func ChunkEntryID(sourceID string, chunkIndex int) string {
	return fmt.Sprintf("%s-chunk-%d", sourceID, chunkIndex)
}

// Match is one retrieved neighbor with its similarity score.
type Match struct {
	ID       string
	Score    float64
	Metadata EntryMetadata
}

// RetrievedContext is the per-query retrieval result: matches in
// non-increasing score order plus the rendered context block.
type RetrievedContext struct {
	Matches []Match
	Block   string
}

// AnswerResult pairs the generated answer with the source snippets used.
type AnswerResult struct {
	Answer  string
	Sources []Match
}
