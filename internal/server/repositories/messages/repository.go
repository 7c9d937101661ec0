package messages

import (
	"context"

	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	ListByChat(ctx context.Context, chatID int64) ([]*models.Message, error)
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	// DetachAuthor clears the author of every message accountID wrote in chatID
	// and returns the number of affected messages.
	DetachAuthor(ctx context.Context, chatID, accountID int64) (int64, error)
}
