package models

import "time"

// Chat is a named conversation. OwnerID always holds a Membership in it.
type Chat struct {
	ID        int64
	Name      string
	OwnerID   int64
	CreatedAt time.Time
}

type Membership struct {
	AccountID int64
	ChatID    int64
}
