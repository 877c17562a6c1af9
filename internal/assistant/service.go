package assistant

import (
	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"

	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

// Service coordinates chunking, embedding, indexing, retrieval, and answer
// generation. All clients are injected so tests can substitute fakes.
type Service struct {
	embedder   Embedder
	index      VectorIndex
	chunker    Chunker
	extractor  TextExtractor
	completion CompletionClient
	settings   Settings
	logger     logSDK.Logger
}

// NewService wires the pipeline dependencies.
func NewService(
	embedder Embedder,
	index VectorIndex,
	chunker Chunker,
	extractor TextExtractor,
	completion CompletionClient,
	settings Settings,
	logger logSDK.Logger,
) (*Service, error) {
	if embedder == nil {
		return nil, errors.New("embedding client is required")
	}
	if index == nil {
		return nil, errors.New("vector index is required")
	}
	if completion == nil {
		return nil, errors.New("completion client is required")
	}
	if chunker == nil {
		chunker = WindowChunker{}
	}
	if extractor == nil {
		extractor = PlainTextExtractor{}
	}
	if logger == nil {
		logger = log.Logger.Named("assistant")
	}

	return &Service{
		embedder:   embedder,
		index:      index,
		chunker:    chunker,
		extractor:  extractor,
		completion: completion,
		settings:   settings,
		logger:     logger,
	}, nil
}
