// Package models holds the client-side view of PonyExpress entities as they
// arrive over the HTTP API.
package models

import "time"

type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type Chat struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

// Message.AccountID is nil once the author has left the chat.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AccountID *int64    `json:"account_id"`
	ChatID    int64     `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Membership struct {
	ChatID    int64 `json:"chat_id"`
	AccountID int64 `json:"account_id"`
}
