package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
)

// CompletionClient generates an answer from a system prompt and a user query.
type CompletionClient interface {
	CreateText(ctx context.Context, system, user string) (string, error)
}

// ChatCompletionClient wraps OpenAI-compatible chat completions calls with
// bounded output and deterministic-ish sampling.
type ChatCompletionClient struct {
	apiBase     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewChatCompletionClient creates a chat completion helper with safe defaults.
func NewChatCompletionClient(apiBase, apiKey, model string, temperature float64, maxTokens int, httpClient *http.Client) *ChatCompletionClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &ChatCompletionClient{
		apiBase:     strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		apiKey:      strings.TrimSpace(apiKey),
		model:       strings.TrimSpace(model),
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  httpClient,
	}
}

// CreateText sends one chat completion request and returns the first choice.
func (c *ChatCompletionClient) CreateText(ctx context.Context, system, user string) (string, error) {
	if c == nil {
		return "", errors.New("completion client is nil")
	}
	if c.apiBase == "" {
		return "", errors.New("missing chat completions base url")
	}
	if c.model == "" {
		return "", errors.New("missing chat model")
	}
	if strings.TrimSpace(user) == "" {
		return "", errors.New("missing user content")
	}

	payload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build chat request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "call chat completions endpoint")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return "", errors.Errorf("chat completions endpoint status %d", httpResp.StatusCode)
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "decode chat response")
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("chat completions returned no choices")
	}

	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completions returned empty content")
	}

	return text, nil
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
