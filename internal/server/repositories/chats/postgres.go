// Package chats persists chats in PostgreSQL. Deleting a chat cascades to
// its memberships and messages at the schema level.
package chats

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

func scanChat(row scanner) (*models.Chat, error) {
	c := &models.Chat{}
	if err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, chat *models.Chat) (*models.Chat, error) {

	query :=
		`INSERT INTO chats (name, owner_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, chat.Name, chat.OwnerID).Scan(&chat.ID, &chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return chat, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Chat, error) {
	c, err := scanChat(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Chat, error) {
	query :=
		`SELECT id, name, owner_id, created_at FROM chats
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Chat, error) {
	query :=
		`SELECT id, name, owner_id, created_at FROM chats
		 WHERE name = $1
		 `
	return r.getOne(ctx, query, name)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Chat, error) {
	query :=
		`SELECT id, name, owner_id, created_at FROM chats
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, chat *models.Chat) error {
	query :=
		`UPDATE chats SET name = $1, owner_id = $2
		 WHERE id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, chat.Name, chat.OwnerID, chat.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM chats
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresRepository) ExistsByOwner(ctx context.Context, ownerID int64) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM chats WHERE owner_id = $1)
		 `

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
