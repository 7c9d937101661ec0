package client

import (
	"context"

	"github.com/dmitrijs2005/ponyexpress/internal/client/models"
)

type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, email, password string) (*models.Account, error)
	Login(ctx context.Context, username, password string) error
	Logout()
	Me(ctx context.Context) (*models.Account, error)
	ListChats(ctx context.Context) ([]models.Chat, error)
	CreateChat(ctx context.Context, name string, ownerID int64) (*models.Chat, error)
	ListMessages(ctx context.Context, chatID int64) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID int64, text string, accountID int64) (*models.Message, error)
	Join(ctx context.Context, chatID, accountID int64) (*models.Membership, error)
}
