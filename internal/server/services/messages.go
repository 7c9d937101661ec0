package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ponyexpress/internal/dbx"
	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
)

// ListMessages returns the messages of a chat ordered by id.
func (s *ChatService) ListMessages(ctx context.Context, chatID int64) ([]*models.Message, error) {
	var list []*models.Message

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getChatOrFail(ctx, s.repomanager.Chats(tx), chatID); err != nil {
			return err
		}

		var err error
		list, err = s.repomanager.Messages(tx).ListByChat(ctx, chatID)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

// CreateMessage posts text to a chat on behalf of accountID, which must be
// the caller and a member of the chat.
func (s *ChatService) CreateMessage(ctx context.Context, chatID int64, text string, accountID, callerID int64) (*models.Message, error) {
	if accountID != callerID {
		return nil, apperr.AccessDenied(entityMessage)
	}

	var message *models.Message

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getChatOrFail(ctx, s.repomanager.Chats(tx), chatID); err != nil {
			return err
		}

		m, err := findMembership(ctx, s.repomanager.Memberships(tx), accountID, chatID)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.MembershipRequired(accountID, chatID)
		}

		author := accountID
		message, err = s.repomanager.Messages(tx).Create(ctx, &models.Message{
			Text:      text,
			AccountID: &author,
			ChatID:    chatID,
			CreatedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

func (s *ChatService) UpdateMessage(ctx context.Context, chatID, messageID int64, text string) (*models.Message, error) {
	var message *models.Message

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getChatOrFail(ctx, s.repomanager.Chats(tx), chatID); err != nil {
			return err
		}

		repo := s.repomanager.Messages(tx)
		var err error
		message, err = getMessageOrFail(ctx, repo, chatID, messageID)
		if err != nil {
			return err
		}

		if err := repo.UpdateText(ctx, messageID, text); err != nil {
			return fmt.Errorf("update message: %w", err)
		}
		message.Text = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

func (s *ChatService) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getChatOrFail(ctx, s.repomanager.Chats(tx), chatID); err != nil {
			return err
		}

		repo := s.repomanager.Messages(tx)
		if _, err := getMessageOrFail(ctx, repo, chatID, messageID); err != nil {
			return err
		}

		if err := repo.Delete(ctx, messageID); err != nil {
			return fmt.Errorf("delete message: %w", err)
		}
		return nil
	})
}
