// Package model holds the primary-store records of the chat application.
package model

import "time"

// Message is a chat message row. Author and channel names are denormalized
// at write time so the ingestion pipeline does not need joins.
type Message struct {
	ID              string    `bson:"_id" json:"id"`
	ChannelID       string    `bson:"channel_id" json:"channel_id"`
	ChannelName     string    `bson:"channel_name" json:"channel_name"`
	UserID          string    `bson:"user_id" json:"user_id"`
	Username        string    `bson:"username" json:"username"`
	Content         string    `bson:"content" json:"content"`
	ParentMessageID string    `bson:"parent_message_id,omitempty" json:"parent_message_id,omitempty"`
	HasReply        bool      `bson:"has_reply" json:"has_reply"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// IsReply reports whether this message is a thread reply.
func (m *Message) IsReply() bool {
	return m.ParentMessageID != ""
}

// Channel is a workspace channel.
type Channel struct {
	ID          string    `bson:"_id" json:"id"`
	ChannelName string    `bson:"channel_name" json:"channel_name"`
	WorkspaceID string    `bson:"workspace_id" json:"workspace_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// File is the metadata record of an uploaded file; the bytes live in blob
// storage under StoragePath.
type File struct {
	ID          string    `bson:"_id" json:"id"`
	FileName    string    `bson:"file_name" json:"file_name"`
	ContentType string    `bson:"content_type" json:"content_type"`
	StoragePath string    `bson:"storage_path" json:"storage_path"`
	ChannelID   string    `bson:"channel_id" json:"channel_id"`
	ChannelName string    `bson:"channel_name" json:"channel_name"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Username    string    `bson:"username" json:"username"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
