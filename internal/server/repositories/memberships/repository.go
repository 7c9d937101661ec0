package memberships

import (
	"context"

	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, accountID, chatID int64) (*models.Membership, error)
	Find(ctx context.Context, accountID, chatID int64) (*models.Membership, error)
	Delete(ctx context.Context, accountID, chatID int64) error
}
