package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ponyexpress/internal/common"
	"github.com/dmitrijs2005/ponyexpress/internal/dbx"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/chats"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/memberships"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/messages"
)

// -------- in-memory store --------

type memberKey struct{ accountID, chatID int64 }

// memStore mimics the relational schema including its cascades. fail maps an
// operation name such as "chats.Create" to an injected error.
type memStore struct {
	accounts map[int64]models.Account
	chats    map[int64]models.Chat
	messages map[int64]models.Message
	members  map[memberKey]bool
	nextID   int64
	fail     map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[int64]models.Account{},
		chats:    map[int64]models.Chat{},
		messages: map[int64]models.Message{},
		members:  map[memberKey]bool{},
		fail:     map[string]error{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) err(op string) error { return s.fail[op] }

func (s *memStore) addAccount(username, email, hash string) int64 {
	id := s.id()
	s.accounts[id] = models.Account{ID: id, Username: username, Email: email, HashedPassword: hash}
	return id
}

func (s *memStore) addChat(name string, ownerID int64) int64 {
	id := s.id()
	s.chats[id] = models.Chat{ID: id, Name: name, OwnerID: ownerID}
	s.members[memberKey{ownerID, id}] = true
	return id
}

func (s *memStore) addMessage(chatID, accountID int64, text string) int64 {
	id := s.id()
	author := accountID
	s.messages[id] = models.Message{ID: id, Text: text, AccountID: &author, ChatID: chatID}
	return id
}

// -------- accounts --------

type memAccounts struct{ s *memStore }

var _ accounts.Repository = (*memAccounts)(nil)

func (r *memAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if err := r.s.err("accounts.Create"); err != nil {
		return nil, err
	}
	a.ID = r.s.id()
	r.s.accounts[a.ID] = *a
	return a, nil
}

func (r *memAccounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if err := r.s.err("accounts.GetByID"); err != nil {
		return nil, err
	}
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *memAccounts) find(match func(models.Account) bool) (*models.Account, error) {
	for _, a := range r.s.accounts {
		if match(a) {
			a := a
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memAccounts) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	if err := r.s.err("accounts.GetByUsername"); err != nil {
		return nil, err
	}
	return r.find(func(a models.Account) bool { return a.Username == username })
}

func (r *memAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := r.s.err("accounts.GetByEmail"); err != nil {
		return nil, err
	}
	return r.find(func(a models.Account) bool { return a.Email == email })
}

func (r *memAccounts) List(ctx context.Context) ([]*models.Account, error) {
	if err := r.s.err("accounts.List"); err != nil {
		return nil, err
	}
	var out []*models.Account
	for _, a := range r.s.accounts {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAccounts) ListByChat(ctx context.Context, chatID int64) ([]*models.Account, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Account
	for _, a := range all {
		if r.s.members[memberKey{a.ID, chatID}] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAccounts) Update(ctx context.Context, a *models.Account) error {
	if err := r.s.err("accounts.Update"); err != nil {
		return err
	}
	cur, ok := r.s.accounts[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Username, cur.Email = a.Username, a.Email
	r.s.accounts[a.ID] = cur
	return nil
}

func (r *memAccounts) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if err := r.s.err("accounts.UpdatePassword"); err != nil {
		return err
	}
	cur, ok := r.s.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	cur.HashedPassword = hash
	r.s.accounts[id] = cur
	return nil
}

func (r *memAccounts) Delete(ctx context.Context, id int64) error {
	if err := r.s.err("accounts.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.accounts, id)
	for k := range r.s.members {
		if k.accountID == id {
			delete(r.s.members, k)
		}
	}
	for mid, m := range r.s.messages {
		if m.AccountID != nil && *m.AccountID == id {
			m.AccountID = nil
			r.s.messages[mid] = m
		}
	}
	return nil
}

// -------- chats --------

type memChats struct{ s *memStore }

var _ chats.Repository = (*memChats)(nil)

func (r *memChats) Create(ctx context.Context, c *models.Chat) (*models.Chat, error) {
	if err := r.s.err("chats.Create"); err != nil {
		return nil, err
	}
	c.ID = r.s.id()
	r.s.chats[c.ID] = *c
	return c, nil
}

func (r *memChats) GetByID(ctx context.Context, id int64) (*models.Chat, error) {
	if err := r.s.err("chats.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.chats[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *memChats) GetByName(ctx context.Context, name string) (*models.Chat, error) {
	if err := r.s.err("chats.GetByName"); err != nil {
		return nil, err
	}
	for _, c := range r.s.chats {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memChats) List(ctx context.Context) ([]*models.Chat, error) {
	if err := r.s.err("chats.List"); err != nil {
		return nil, err
	}
	var out []*models.Chat
	for _, c := range r.s.chats {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memChats) Update(ctx context.Context, c *models.Chat) error {
	if err := r.s.err("chats.Update"); err != nil {
		return err
	}
	if _, ok := r.s.chats[c.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.chats[c.ID] = *c
	return nil
}

func (r *memChats) Delete(ctx context.Context, id int64) error {
	if err := r.s.err("chats.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.chats[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.chats, id)
	for k := range r.s.members {
		if k.chatID == id {
			delete(r.s.members, k)
		}
	}
	for mid, m := range r.s.messages {
		if m.ChatID == id {
			delete(r.s.messages, mid)
		}
	}
	return nil
}

func (r *memChats) ExistsByOwner(ctx context.Context, ownerID int64) (bool, error) {
	if err := r.s.err("chats.ExistsByOwner"); err != nil {
		return false, err
	}
	for _, c := range r.s.chats {
		if c.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

// -------- messages --------

type memMessages struct{ s *memStore }

var _ messages.Repository = (*memMessages)(nil)

func (r *memMessages) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	if err := r.s.err("messages.Create"); err != nil {
		return nil, err
	}
	m.ID = r.s.id()
	r.s.messages[m.ID] = *m
	return m, nil
}

func (r *memMessages) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	if err := r.s.err("messages.GetByID"); err != nil {
		return nil, err
	}
	m, ok := r.s.messages[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &m, nil
}

func (r *memMessages) ListByChat(ctx context.Context, chatID int64) ([]*models.Message, error) {
	if err := r.s.err("messages.ListByChat"); err != nil {
		return nil, err
	}
	var out []*models.Message
	for _, m := range r.s.messages {
		if m.ChatID == chatID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMessages) UpdateText(ctx context.Context, id int64, text string) error {
	if err := r.s.err("messages.UpdateText"); err != nil {
		return err
	}
	m, ok := r.s.messages[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.Text = text
	r.s.messages[id] = m
	return nil
}

func (r *memMessages) Delete(ctx context.Context, id int64) error {
	if err := r.s.err("messages.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.messages[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.messages, id)
	return nil
}

func (r *memMessages) DetachAuthor(ctx context.Context, chatID, accountID int64) (int64, error) {
	if err := r.s.err("messages.DetachAuthor"); err != nil {
		return 0, err
	}
	var n int64
	for id, m := range r.s.messages {
		if m.ChatID == chatID && m.AccountID != nil && *m.AccountID == accountID {
			m.AccountID = nil
			r.s.messages[id] = m
			n++
		}
	}
	return n, nil
}

// -------- memberships --------

type memMemberships struct{ s *memStore }

var _ memberships.Repository = (*memMemberships)(nil)

func (r *memMemberships) Create(ctx context.Context, accountID, chatID int64) (*models.Membership, error) {
	if err := r.s.err("memberships.Create"); err != nil {
		return nil, err
	}
	r.s.members[memberKey{accountID, chatID}] = true
	return &models.Membership{AccountID: accountID, ChatID: chatID}, nil
}

func (r *memMemberships) Find(ctx context.Context, accountID, chatID int64) (*models.Membership, error) {
	if err := r.s.err("memberships.Find"); err != nil {
		return nil, err
	}
	if !r.s.members[memberKey{accountID, chatID}] {
		return nil, common.ErrorNotFound
	}
	return &models.Membership{AccountID: accountID, ChatID: chatID}, nil
}

func (r *memMemberships) Delete(ctx context.Context, accountID, chatID int64) error {
	if err := r.s.err("memberships.Delete"); err != nil {
		return err
	}
	k := memberKey{accountID, chatID}
	if !r.s.members[k] {
		return common.ErrorNotFound
	}
	delete(r.s.members, k)
	return nil
}

// -------- manager --------

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return &memAccounts{m.s} }
func (m *fakeRepoManager) Chats(dbx.DBTX) chats.Repository              { return &memChats{m.s} }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return &memMessages{m.s} }
func (m *fakeRepoManager) Memberships(dbx.DBTX) memberships.Repository  { return &memMemberships{m.s} }

// -------- harness --------

type harness struct {
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *memStore
	rm    *fakeRepoManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := newMemStore()
	return &harness{db: db, mock: mock, store: store, rm: &fakeRepoManager{s: store}}
}

func (h *harness) expectCommit() {
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()
}

func (h *harness) expectRollback() {
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()
}

func (h *harness) verify(t *testing.T) {
	t.Helper()
	if err := h.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func ptr[T any](v T) *T { return &v }
