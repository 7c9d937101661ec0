// Package services contains server-side business logic: the authorization
// and referential-integrity rules for accounts, chats, messages and
// memberships. Every exported operation runs inside exactly one database
// transaction and reports policy failures as *apperr.Error.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ponyexpress/internal/common"
	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/chats"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/memberships"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/messages"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	entityAccount = "account"
	entityChat    = "chat"
	entityMessage = "message"
)

func getAccountOrFail(ctx context.Context, repo accounts.Repository, id int64) (*models.Account, error) {
	a, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.EntityNotFound(entityAccount, id)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func getChatOrFail(ctx context.Context, repo chats.Repository, id int64) (*models.Chat, error) {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.EntityNotFound(entityChat, id)
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return c, nil
}

// getMessageOrFail reports a message stored in another chat as not found.
func getMessageOrFail(ctx context.Context, repo messages.Repository, chatID, messageID int64) (*models.Message, error) {
	m, err := repo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.EntityNotFound(entityMessage, messageID)
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	if m.ChatID != chatID {
		return nil, apperr.EntityNotFound(entityMessage, messageID)
	}
	return m, nil
}

// findMembership returns nil without error when there is no such membership.
func findMembership(ctx context.Context, repo memberships.Repository, accountID, chatID int64) (*models.Membership, error) {
	m, err := repo.Find(ctx, accountID, chatID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return m, nil
}

func findByUsername(ctx context.Context, repo accounts.Repository, username string) (*models.Account, error) {
	a, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find account by username: %w", err)
	}
	return a, nil
}

func findByEmail(ctx context.Context, repo accounts.Repository, email string) (*models.Account, error) {
	a, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return a, nil
}

func findChatByName(ctx context.Context, repo chats.Repository, name string) (*models.Chat, error) {
	c, err := repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find chat by name: %w", err)
	}
	return c, nil
}

const pgUniqueViolation = "23505"

type uniqueField struct {
	entity string
	field  string
}

// Constraint names come from migrations/00001_init.sql.
var uniqueConstraints = map[string]uniqueField{
	"accounts_username_key": {entityAccount, "username"},
	"accounts_email_key":    {entityAccount, "email"},
	"chats_name_key":        {entityChat, "name"},
}

// asDuplicate turns a unique violation that raced past the application
// check into DuplicateValue. values maps field name to the attempted value.
func asDuplicate(err error, values map[string]string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if f, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return apperr.DuplicateValue(f.entity, f.field, values[f.field])
		}
	}
	return err
}
