package assistant

import (
	"context"
	"fmt"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
)

// systemPromptTemplate instructs the model to answer only from the
// retrieved context. The do-not-fabricate instruction is a correctness
// requirement: answers must not attribute invented facts to the workspace.
const systemPromptTemplate = `You are a helpful AI assistant that answers questions about conversations and files in the workspace.
Use the following context to answer the user's question. If you cannot find the answer in the context,
say so - do not make up information.

Context:
%s`

// Answer runs the full query path: retrieve context, fill the prompt
// template, invoke the chat model, and return the answer with its sources.
func (s *Service) Answer(ctx context.Context, query string) (*AnswerResult, error) {
	logger := s.loggerFromContext(ctx)

	retrieved, err := s.Retrieve(ctx, query, s.settings.TopK)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	system := fmt.Sprintf(systemPromptTemplate, retrieved.Block)
	answer, err := s.completion.CreateText(ctx, system, query)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	logger.Info("assistant answered",
		zap.Int("sources", len(retrieved.Matches)),
		zap.Int("answer_chars", len(answer)))

	return &AnswerResult{
		Answer:  answer,
		Sources: retrieved.Matches,
	}, nil
}
