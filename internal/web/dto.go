package web

import "github.com/Eli-Gooding/ChatGenius-App/internal/assistant"

type assistantQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

type assistantQueryResponse struct {
	Response string        `json:"response"`
	Context  []contextItem `json:"context"`
}

type contextItem struct {
	Content  string                  `json:"content"`
	Metadata assistant.EntryMetadata `json:"metadata"`
}

type fileProcessRequest struct {
	FileID string `json:"fileId" binding:"required"`
}

type fileProcessResponse struct {
	Success         bool `json:"success"`
	ChunksProcessed int  `json:"chunksProcessed"`
}

type messageCreateRequest struct {
	Content         string `json:"content" binding:"required"`
	ChannelID       string `json:"channelId" binding:"required"`
	ParentMessageID string `json:"parentMessageId"`
}

type errorResponse struct {
	Error           string `json:"error"`
	ChunksProcessed *int   `json:"chunksProcessed,omitempty"`
}
