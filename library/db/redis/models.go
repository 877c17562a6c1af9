package redis

import "time"

// IngestMessageTask asks the ingestion worker to embed and index one chat message.
type IngestMessageTask struct {
	MessageID string    `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}
