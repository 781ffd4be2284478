package core

import "time"

// Update is one unit of inbound activity from the chat transport.
// IDs are strictly increasing.
type Update struct {
	ID      int64
	Message *Message
}

// Message represents a chat message carried by an update.
// Text is nil when the message has no text (stickers, photos, joins).
type Message struct {
	ID     int64
	ChatID int64
	Text   *string
	Date   time.Time
}
