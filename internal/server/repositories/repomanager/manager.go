package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ponyexpress/internal/dbx"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/chats"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/memberships"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/messages"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Chats(db dbx.DBTX) chats.Repository
	Messages(db dbx.DBTX) messages.Repository
	Memberships(db dbx.DBTX) memberships.Repository
}
