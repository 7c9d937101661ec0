package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ponyexpress/internal/dbx"
	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
)

// ListChatAccounts returns the members of a chat ordered by id.
func (s *ChatService) ListChatAccounts(ctx context.Context, chatID int64) ([]*models.Account, error) {
	var list []*models.Account

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getChatOrFail(ctx, s.repomanager.Chats(tx), chatID); err != nil {
			return err
		}

		var err error
		list, err = s.repomanager.Accounts(tx).ListByChat(ctx, chatID)
		if err != nil {
			return fmt.Errorf("list chat accounts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

// AddMembership makes accountID a member of chatID. created is false when
// the membership already existed.
func (s *ChatService) AddMembership(ctx context.Context, chatID, accountID int64) (membership *models.Membership, created bool, err error) {
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getChatOrFail(ctx, s.repomanager.Chats(tx), chatID); err != nil {
			return err
		}
		if _, err := getAccountOrFail(ctx, s.repomanager.Accounts(tx), accountID); err != nil {
			return err
		}

		repo := s.repomanager.Memberships(tx)
		existing, err := findMembership(ctx, repo, accountID, chatID)
		if err != nil {
			return err
		}
		if existing != nil {
			membership = existing
			return nil
		}

		membership, err = repo.Create(ctx, accountID, chatID)
		if err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return membership, created, nil
}

// DeleteMembership removes a non-owner from a chat. The member's messages in
// that chat are kept with their author cleared.
func (s *ChatService) DeleteMembership(ctx context.Context, chatID, accountID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		chat, err := getChatOrFail(ctx, s.repomanager.Chats(tx), chatID)
		if err != nil {
			return err
		}

		repo := s.repomanager.Memberships(tx)
		m, err := findMembership(ctx, repo, accountID, chatID)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.MembershipRequired(accountID, chatID)
		}

		if accountID == chat.OwnerID {
			return apperr.ChatOwnerRemoval()
		}

		detached, err := s.repomanager.Messages(tx).DetachAuthor(ctx, chatID, accountID)
		if err != nil {
			return fmt.Errorf("detach messages: %w", err)
		}
		s.logger.Debug(ctx, "messages detached", "chat_id", chatID, "account_id", accountID, "count", detached)

		if err := repo.Delete(ctx, accountID, chatID); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
}
