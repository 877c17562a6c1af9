package assistant

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	pgvector "github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
)

func (s *Service) loggerFromContext(ctx context.Context) logSDK.Logger {
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			return ctxLogger
		}
	}
	return s.logger
}

// IngestMessage embeds one chat message and upserts it keyed by message ID.
// An empty message is a no-op, not an error. Re-ingesting the same message
// overwrites in place.
func (s *Service) IngestMessage(ctx context.Context, record MessageRecord) error {
	logger := s.loggerFromContext(ctx)

	if strings.TrimSpace(record.TextContent) == "" {
		logger.Debug("skip empty message", zap.String("message_id", record.ID))
		return nil
	}
	if strings.TrimSpace(record.ID) == "" {
		return errors.New("message id cannot be empty")
	}

	vector, err := s.embedder.Embed(ctx, record.TextContent)
	if err != nil {
		return errors.Wrap(err, "embed message")
	}

	entry := IndexEntry{
		ID:     record.ID,
		Vector: vector,
		Metadata: EntryMetadata{
			Content:     record.TextContent,
			SourceID:    record.ID,
			SourceType:  SourceTypeMessage,
			AuthorName:  record.AuthorName,
			ChannelName: record.ChannelName,
			CreatedAt:   record.CreatedAt,
			IsReply:     record.IsReply,
			ParentID:    record.ParentID,
		},
	}
	if err := s.index.Upsert(ctx, []IndexEntry{entry}); err != nil {
		return errors.Wrap(err, "upsert message entry")
	}

	logger.Info("message ingested",
		zap.String("message_id", record.ID),
		zap.String("channel", record.ChannelName))
	return nil
}

// IngestDocument extracts text, chunks it, embeds the chunks with bounded
// concurrency, and upserts the entries in ordered batches. It returns the
// number of chunks made durable; on a late failure the earlier writes
// remain valid and a PartialBatchError reports the count.
func (s *Service) IngestDocument(ctx context.Context, record DocumentRecord) (int, error) {
	logger := s.loggerFromContext(ctx)

	if strings.TrimSpace(record.ID) == "" {
		return 0, errors.New("document id cannot be empty")
	}

	text, err := s.extractor.Extract(record)
	if err != nil {
		return 0, errors.Wrap(err, "extract document text")
	}

	chunks := s.chunker.Chunk(text, s.settings.ChunkSize, s.settings.ChunkOverlap)
	if len(chunks) == 0 {
		logger.Debug("document produced no chunks", zap.String("document_id", record.ID))
		return 0, nil
	}

	vectors, embedded, embedErr := s.embedChunks(ctx, chunks)

	entries := make([]IndexEntry, 0, embedded)
	for i := 0; i < embedded; i++ {
		chunkIndex := chunks[i].Index
		entries = append(entries, IndexEntry{
			ID:     ChunkEntryID(record.ID, chunkIndex),
			Vector: vectors[i],
			Metadata: EntryMetadata{
				Content:     chunks[i].Text,
				SourceID:    record.ID,
				SourceType:  SourceTypeDocument,
				AuthorName:  record.AuthorName,
				ChannelName: record.ChannelName,
				CreatedAt:   record.CreatedAt,
				FileName:    record.FileName,
				ChunkIndex:  &chunkIndex,
			},
		})
	}

	written, upsertErr := s.upsertBatches(ctx, entries)

	logger.Info("document ingested",
		zap.String("document_id", record.ID),
		zap.Int("chunks_total", len(chunks)),
		zap.Int("chunks_written", written))

	switch {
	case upsertErr != nil:
		return written, &PartialBatchError{Written: written, Total: len(chunks), Err: upsertErr}
	case embedErr != nil:
		if written == 0 {
			return 0, errors.Wrap(embedErr, "embed document chunks")
		}
		return written, &PartialBatchError{Written: written, Total: len(chunks), Err: embedErr}
	default:
		return written, nil
	}
}

// embedChunks embeds chunks with bounded parallelism. It returns the
// vectors for the contiguous prefix of chunks that embedded successfully,
// so earlier chunks can still be made durable when a later one fails.
// A failed chunk does not cancel its siblings; in-flight embeds run to
// completion and results past the first failure are discarded.
func (s *Service) embedChunks(ctx context.Context, chunks []Chunk) (vectors []pgvector.Vector, embedded int, err error) {
	vectors = make([]pgvector.Vector, len(chunks))
	failures := make([]error, len(chunks))

	var pool errgroup.Group
	limit := s.settings.EmbedConcurrency
	if limit <= 0 {
		limit = 1
	}
	pool.SetLimit(limit)
	for i := range chunks {
		pool.Go(func() error {
			vector, embedErr := s.embedder.Embed(ctx, chunks[i].Text)
			if embedErr != nil {
				failures[i] = embedErr
				return nil
			}
			vectors[i] = vector
			return nil
		})
	}
	// each goroutine owns its own slice index and never returns an error
	_ = pool.Wait()

	embedded = len(chunks)
	for i, failure := range failures {
		if failure != nil {
			embedded = i
			err = failure
			break
		}
	}
	return vectors, embedded, err
}

// upsertBatches writes entries in ordered, sequential batches of bounded
// size. It stops at the first failing batch and reports how many entries
// were already durable; it never silently skips remaining batches.
func (s *Service) upsertBatches(ctx context.Context, entries []IndexEntry) (written int, err error) {
	batchSize := s.settings.UpsertBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err = s.index.Upsert(ctx, entries[start:end]); err != nil {
			return written, errors.Wrapf(err, "upsert batch at offset %d", start)
		}
		written = end
	}
	return written, nil
}
