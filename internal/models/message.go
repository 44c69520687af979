package models

import "time"

// Message is an immutable chat message. Either Content or ImagePath is set
// (possibly both). ReadAt transitions from nil to a timestamp exactly once
// and is never cleared.
type Message struct {
	ID         int        `db:"id" json:"id"`
	ChatID     int        `db:"chat_id" json:"chat_id"`
	SenderID   int        `db:"sender_id" json:"sender_id"`
	SenderName string     `db:"sender_name" json:"sender_name,omitempty"`
	Content    *string    `db:"content" json:"content,omitempty"`
	ImagePath  *string    `db:"image_path" json:"-"`
	ImageURL   string     `json:"image_url,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
}

// Event names carried on the realtime channel.
const (
	EventMessageSent = "message.sent"
	EventMessageRead = "message.read"
)

// ChatEvent is the payload broadcast to live sessions of a chat channel.
// Message is set for message.sent; ReaderID/MessageIDs for message.read.
type ChatEvent struct {
	Event      string   `json:"event"`
	Channel    string   `json:"channel"`
	ChatID     int      `json:"chat_id"`
	Message    *Message `json:"message,omitempty"`
	ReaderID   int      `json:"reader_id,omitempty"`
	MessageIDs []int    `json:"message_ids,omitempty"`
}
