// Package memberships persists the account-to-chat join relation.
package memberships

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ponyexpress/internal/common"
	"github.com/dmitrijs2005/ponyexpress/internal/dbx"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, accountID, chatID int64) (*models.Membership, error) {
	query :=
		`INSERT INTO chat_memberships (account_id, chat_id)
		 VALUES ($1, $2)
		 `

	if _, err := r.db.ExecContext(ctx, query, accountID, chatID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &models.Membership{AccountID: accountID, ChatID: chatID}, nil
}

func (r *PostgresRepository) Find(ctx context.Context, accountID, chatID int64) (*models.Membership, error) {
	query :=
		`SELECT account_id, chat_id FROM chat_memberships
		 WHERE account_id = $1 AND chat_id = $2
		 `

	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, accountID, chatID).Scan(&m.AccountID, &m.ChatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID, chatID int64) error {
	query :=
		`DELETE FROM chat_memberships
		 WHERE account_id = $1 AND chat_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, accountID, chatID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
