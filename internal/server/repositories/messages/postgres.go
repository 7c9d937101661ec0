// Package messages persists chat messages in PostgreSQL.
package messages

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

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*models.Message, error) {
	m := &models.Message{}
	var author sql.NullInt64
	if err := row.Scan(&m.ID, &m.Text, &author, &m.ChatID, &m.CreatedAt); err != nil {
		return nil, err
	}
	if author.Valid {
		id := author.Int64
		m.AccountID = &id
	}
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (text, account_id, chat_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	var author sql.NullInt64
	if message.AccountID != nil {
		author = sql.NullInt64{Int64: *message.AccountID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		message.Text, author, message.ChatID, message.CreatedAt).Scan(&message.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return message, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query :=
		`SELECT id, text, account_id, chat_id, created_at FROM messages
		 WHERE id = $1
		 `

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.Message, error) {
	query :=
		`SELECT id, text, account_id, chat_id, created_at FROM messages
		 WHERE chat_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateText(ctx context.Context, id int64, text string) error {
	query :=
		`UPDATE messages SET text = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, text, id)
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

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM messages
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresRepository) DetachAuthor(ctx context.Context, chatID, accountID int64) (int64, error) {
	query :=
		`UPDATE messages SET account_id = NULL
		 WHERE chat_id = $1 AND account_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, chatID, accountID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
