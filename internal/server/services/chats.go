package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/dbx"
	"github.com/dmitrijs2005/ponyexpress/internal/logging"
	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/repomanager"
)

// ChatService enforces the rules for chats, their messages and memberships.
type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ChatService {
	return &ChatService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "chats"),
		now:         time.Now,
	}
}

func (s *ChatService) ListChats(ctx context.Context) ([]*models.Chat, error) {
	var list []*models.Chat

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		list, err = s.repomanager.Chats(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("list chats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (s *ChatService) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	var chat *models.Chat

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		chat, err = getChatOrFail(ctx, s.repomanager.Chats(tx), chatID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return chat, nil
}

// CreateChat creates a chat together with the owner's membership. Only the
// caller may be named as owner.
func (s *ChatService) CreateChat(ctx context.Context, name string, ownerID, callerID int64) (*models.Chat, error) {
	if ownerID != callerID {
		return nil, apperr.AccessDenied(entityChat)
	}

	var chat *models.Chat

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getAccountOrFail(ctx, s.repomanager.Accounts(tx), ownerID); err != nil {
			return err
		}

		repo := s.repomanager.Chats(tx)
		existing, err := findChatByName(ctx, repo, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.DuplicateValue(entityChat, "name", name)
		}

		chat, err = repo.Create(ctx, &models.Chat{Name: name, OwnerID: ownerID})
		if err != nil {
			return asDuplicate(err, map[string]string{"name": name})
		}

		if _, err := s.repomanager.Memberships(tx).Create(ctx, ownerID, chat.ID); err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "chat created", "chat_id", chat.ID, "owner_id", chat.OwnerID)
	return chat, nil
}

// UpdateChat applies the non-nil fields. The new owner must already be a
// member. The caller is not checked here.
func (s *ChatService) UpdateChat(ctx context.Context, chatID int64, name *string, ownerID *int64) (*models.Chat, error) {
	var chat *models.Chat

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Chats(tx)

		var err error
		chat, err = getChatOrFail(ctx, repo, chatID)
		if err != nil {
			return err
		}

		if name != nil {
			existing, err := findChatByName(ctx, repo, *name)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != chatID {
				return apperr.DuplicateValue(entityChat, "name", *name)
			}
			chat.Name = *name
		}

		if ownerID != nil {
			m, err := findMembership(ctx, s.repomanager.Memberships(tx), *ownerID, chatID)
			if err != nil {
				return err
			}
			if m == nil {
				return apperr.MembershipRequired(*ownerID, chatID)
			}
			chat.OwnerID = *ownerID
		}

		if err := repo.Update(ctx, chat); err != nil {
			return asDuplicate(err, map[string]string{"name": chat.Name})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return chat, nil
}

// DeleteChat removes a chat. Memberships and messages cascade.
func (s *ChatService) DeleteChat(ctx context.Context, chatID int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Chats(tx)

		if _, err := getChatOrFail(ctx, repo, chatID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, chatID); err != nil {
			return fmt.Errorf("delete chat: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "chat deleted", "chat_id", chatID)
	return nil
}
