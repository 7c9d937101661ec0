// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered user of the chat service.
type Account struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	CreatedAt      time.Time
}
