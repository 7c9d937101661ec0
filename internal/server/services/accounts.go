package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ponyexpress/internal/common"
	"github.com/dmitrijs2005/ponyexpress/internal/dbx"
	"github.com/dmitrijs2005/ponyexpress/internal/logging"
	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/dmitrijs2005/ponyexpress/internal/server/auth"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/repomanager"
)

// AccountService handles registration, authentication and self-service
// account management.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *auth.Sessions
	logger      logging.Logger

	hashPassword   func(string) (string, error)
	verifyPassword func(password, hash string) bool
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, sessions *auth.Sessions, logger logging.Logger) *AccountService {
	return &AccountService{
		db:             db,
		repomanager:    m,
		sessions:       sessions,
		logger:         logger.With("module", "accounts"),
		hashPassword:   auth.HashPassword,
		verifyPassword: auth.VerifyPassword,
	}
}

// Register creates an account. Username is checked for duplicates before email.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	var account *models.Account

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		existing, err := findByUsername(ctx, repo, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.DuplicateValue(entityAccount, "username", username)
		}

		existing, err = findByEmail(ctx, repo, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.DuplicateValue(entityAccount, "email", email)
		}

		hash, err := s.hashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		account, err = repo.Create(ctx, &models.Account{Username: username, Email: email, HashedPassword: hash})
		if err != nil {
			return asDuplicate(err, map[string]string{"username": username, "email": email})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

// Authenticate returns the id of the account matching the credentials. An
// unknown username and a wrong password fail identically.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	var id int64

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := findByUsername(ctx, s.repomanager.Accounts(tx), username)
		if err != nil {
			return err
		}
		if account == nil || !s.verifyPassword(password, account.HashedPassword) {
			return apperr.InvalidCredentials()
		}
		id = account.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// IssueToken authenticates the credentials and mints a session token.
func (s *AccountService) IssueToken(ctx context.Context, username, password string) (string, error) {
	id, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.sessions.Issue(id)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// ResolveCaller maps a session token to the account it was issued for. A
// token for an account that no longer exists is an InvalidSession.
func (s *AccountService) ResolveCaller(ctx context.Context, token string) (*models.Account, error) {
	id, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	err = dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		a, err := s.repomanager.Accounts(tx).GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return apperr.InvalidSession()
			}
			return fmt.Errorf("get account: %w", err)
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	var list []*models.Account

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		list, err = s.repomanager.Accounts(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	var account *models.Account

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		account, err = getAccountOrFail(ctx, s.repomanager.Accounts(tx), id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// UpdateAccount applies the non-nil fields. A value equal to the current one
// is a no-op and is not checked for duplicates.
func (s *AccountService) UpdateAccount(ctx context.Context, id int64, username, email *string) (*models.Account, error) {
	var account *models.Account

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		var err error
		account, err = getAccountOrFail(ctx, repo, id)
		if err != nil {
			return err
		}

		if username != nil && *username != account.Username {
			existing, err := findByUsername(ctx, repo, *username)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != id {
				return apperr.DuplicateValue(entityAccount, "username", *username)
			}
			account.Username = *username
		}

		if email != nil && *email != account.Email {
			existing, err := findByEmail(ctx, repo, *email)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != id {
				return apperr.DuplicateValue(entityAccount, "email", *email)
			}
			account.Email = *email
		}

		if err := repo.Update(ctx, account); err != nil {
			return asDuplicate(err, map[string]string{"username": account.Username, "email": account.Email})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// UpdatePassword replaces the password hash after verifying oldPassword.
func (s *AccountService) UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		account, err := getAccountOrFail(ctx, repo, id)
		if err != nil {
			return err
		}
		if !s.verifyPassword(oldPassword, account.HashedPassword) {
			return apperr.InvalidCredentials()
		}

		hash, err := s.hashPassword(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := repo.UpdatePassword(ctx, id, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

// DeleteAccount removes an account that owns no chat. Its memberships go
// with it and its messages lose their author.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		if _, err := getAccountOrFail(ctx, repo, id); err != nil {
			return err
		}

		owns, err := s.repomanager.Chats(tx).ExistsByOwner(ctx, id)
		if err != nil {
			return fmt.Errorf("check chat ownership: %w", err)
		}
		if owns {
			return apperr.ChatOwnerRemoval()
		}

		if err := repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "account deleted", "account_id", id)
	return nil
}
