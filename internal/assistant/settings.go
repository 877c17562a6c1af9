package assistant

import (
	"fmt"
	"strings"

	gconfig "github.com/Laisky/go-config/v2"
)

// Settings captures runtime configuration for the assistant pipelines.
type Settings struct {
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	EmbeddingModel      string
	EmbeddingDimensions int
	ChatModel           string
	Temperature         float64
	MaxOutputTokens     int
	ChunkSize           int
	ChunkOverlap        int
	TopK                int
	UpsertBatchSize     int
	EmbedConcurrency    int
	Namespace           string
}

// LoadSettingsFromConfig reads the shared configuration and returns a
// sanitized Settings instance.
func LoadSettingsFromConfig() Settings {
	cfg := Settings{
		OpenAIAPIKey:        strings.TrimSpace(gconfig.S.GetString("settings.openai.api_key")),
		OpenAIBaseURL:       strings.TrimSpace(gconfig.S.GetString("settings.openai.base_url")),
		EmbeddingModel:      strings.TrimSpace(gconfig.S.GetString("settings.openai.embedding_model")),
		EmbeddingDimensions: intFromConfig("settings.openai.embedding_dimensions", 3072),
		ChatModel:           strings.TrimSpace(gconfig.S.GetString("settings.openai.chat_model")),
		Temperature:         floatFromConfig("settings.openai.temperature", 0.7),
		MaxOutputTokens:     intFromConfig("settings.openai.max_output_tokens", 500),
		ChunkSize:           intFromConfig("settings.assistant.chunk_size", 1000),
		ChunkOverlap:        intFromConfig("settings.assistant.chunk_overlap", 100),
		TopK:                intFromConfig("settings.assistant.top_k", 5),
		UpsertBatchSize:     intFromConfig("settings.assistant.upsert_batch_size", 100),
		EmbedConcurrency:    intFromConfig("settings.assistant.embed_concurrency", 4),
		Namespace:           strings.TrimSpace(gconfig.S.GetString("settings.assistant.namespace")),
	}

	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.openai.com"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-large"
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = 3072
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4-turbo-preview"
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 500
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.UpsertBatchSize <= 0 || cfg.UpsertBatchSize > 100 {
		cfg.UpsertBatchSize = 100
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = 4
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "workspace"
	}
	return cfg
}

func intFromConfig(key string, def int) int {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return def
		}
		var parsed int
		_, err := fmt.Sscanf(trimmed, "%d", &parsed)
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

func floatFromConfig(key string, def float64) float64 {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return def
		}
		var parsed float64
		_, err := fmt.Sscanf(trimmed, "%f", &parsed)
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}
