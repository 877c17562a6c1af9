package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	pgvector "github.com/pgvector/pgvector-go"
)

// embedSubBatchSize bounds the number of inputs per upstream request to
// respect provider payload limits.
const embedSubBatchSize = 32

// Embedder converts text into fixed-length dense vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIEmbedder constructs an embedder for the configured model.
func NewOpenAIEmbedder(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIEmbedder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenAIEmbedder{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		httpClient: httpClient,
	}
}

// Embed returns the vector representation of a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, errors.WithStack(err)
	}
	return vectors[0], nil
}

// EmbedBatch embeds the input strings, splitting them into bounded
// sub-requests. Empty inputs are rejected before any provider call.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, errors.WithStack(ErrEmptyInput)
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, errors.WithStack(ErrEmptyInput)
		}
	}
	if e.baseURL == "" {
		return nil, errors.New("missing embeddings base url")
	}
	if e.model == "" {
		return nil, errors.New("missing embeddings model")
	}

	vectors := make([]pgvector.Vector, 0, len(texts))
	for start := 0; start < len(texts); start += embedSubBatchSize {
		end := start + embedSubBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		resp, err := e.createEmbeddings(ctx, texts[start:end])
		if err != nil {
			return nil, &ProviderError{Op: "embed", Err: err}
		}
		if len(resp.Data) != end-start {
			return nil, &ProviderError{Op: "embed",
				Err: errors.Errorf("expected %d vectors, got %d", end-start, len(resp.Data))}
		}
		for _, data := range resp.Data {
			values := make([]float32, len(data.Embedding))
			for i, value := range data.Embedding {
				values[i] = float32(value)
			}
			vectors = append(vectors, pgvector.NewVector(values))
		}
	}

	return vectors, nil
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []embeddingsDataItem `json:"data"`
}

type embeddingsDataItem struct {
	Embedding []float64 `json:"embedding"`
}

// createEmbeddings sends one embeddings batch request and parses the response.
func (e *OpenAIEmbedder) createEmbeddings(ctx context.Context, batch []string) (*embeddingsResponse, error) {
	body, err := json.Marshal(embeddingsRequest{Model: e.model, Input: batch})
	if err != nil {
		return nil, errors.Wrap(err, "marshal embeddings request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build embeddings request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "call embeddings endpoint")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Errorf("embeddings endpoint status %d", httpResp.StatusCode)
	}

	var decoded embeddingsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "decode embeddings response")
	}

	return &decoded, nil
}
