package assistant

import (
	"context"
	"fmt"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
)

// EmptyContextPlaceholder is passed to the answer model when retrieval
// finds nothing, so it can say it found nothing instead of fabricating.
const EmptyContextPlaceholder = "No relevant context found."

const timestampLayout = "Jan 2, 2006 15:04 MST"

// Retrieve embeds the query, fetches the nearest neighbors, and renders
// them into a single context block with provenance. Zero matches is not an
// error; the block becomes the placeholder text.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) (*RetrievedContext, error) {
	logger := s.loggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return nil, errors.WithStack(ErrEmptyQuery)
	}
	if topK <= 0 {
		topK = s.settings.TopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	matches, err := s.index.Query(ctx, vector, topK, nil)
	if err != nil {
		return nil, errors.Wrap(err, "query vector index")
	}

	logger.Debug("retrieval finished",
		zap.Int("top_k", topK),
		zap.Int("matches", len(matches)))

	return &RetrievedContext{
		Matches: matches,
		Block:   renderContextBlock(matches),
	}, nil
}

func renderContextBlock(matches []Match) string {
	if len(matches) == 0 {
		return EmptyContextPlaceholder
	}

	lines := make([]string, 0, len(matches))
	for _, match := range matches {
		lines = append(lines, renderMatch(match.Metadata))
	}
	return strings.Join(lines, "\n\n")
}

// renderMatch formats one retrieved entry with its provenance. The switch
// over SourceType must cover every variant.
func renderMatch(md EntryMetadata) string {
	switch md.SourceType {
	case SourceTypeMessage:
		return fmt.Sprintf("Message from %s in #%s at %s:\n%s",
			md.AuthorName, md.ChannelName, md.CreatedAt.Format(timestampLayout), md.Content)
	case SourceTypeDocument:
		if md.PageNumber != nil {
			return fmt.Sprintf("Document %s (page %d) shared in #%s:\n%s",
				md.FileName, *md.PageNumber, md.ChannelName, md.Content)
		}
		return fmt.Sprintf("Document %s shared in #%s:\n%s",
			md.FileName, md.ChannelName, md.Content)
	default:
		return md.Content
	}
}
