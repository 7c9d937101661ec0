package chats

import (
	"context"

	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, chat *models.Chat) (*models.Chat, error)
	GetByID(ctx context.Context, id int64) (*models.Chat, error)
	GetByName(ctx context.Context, name string) (*models.Chat, error)
	List(ctx context.Context) ([]*models.Chat, error)
	Update(ctx context.Context, chat *models.Chat) error
	Delete(ctx context.Context, id int64) error
	ExistsByOwner(ctx context.Context, ownerID int64) (bool, error)
}
