package models

import "time"

// Message is a chat post. AccountID is nil once the author has left the chat.
type Message struct {
	ID        int64
	Text      string
	AccountID *int64
	ChatID    int64
	CreatedAt time.Time
}
