package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/logging"
	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/dmitrijs2005/ponyexpress/internal/server/metrics"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
)

var alice = &models.Account{ID: 1, Username: "alice", Email: "alice@example.com"}

// fakeAccounts resolves tokens from a fixed map and delegates everything else
// to optional function fields.
type fakeAccounts struct {
	tokens        map[string]*models.Account
	resolvedToken string

	register       func(username, email, password string) (*models.Account, error)
	issueToken     func(username, password string) (string, error)
	updateAccount  func(id int64, username, email *string) (*models.Account, error)
	updatePassword func(id int64, oldPassword, newPassword string) error
	deleteAccount  func(id int64) error
	list           []*models.Account
	listErr        error
}

func (f *fakeAccounts) Register(_ context.Context, username, email, password string) (*models.Account, error) {
	return f.register(username, email, password)
}

func (f *fakeAccounts) IssueToken(_ context.Context, username, password string) (string, error) {
	return f.issueToken(username, password)
}

func (f *fakeAccounts) ResolveCaller(_ context.Context, token string) (*models.Account, error) {
	f.resolvedToken = token
	if token == "expired" {
		return nil, apperr.ExpiredSession()
	}
	a, ok := f.tokens[token]
	if !ok {
		return nil, apperr.InvalidSession()
	}
	return a, nil
}

func (f *fakeAccounts) ListAccounts(context.Context) ([]*models.Account, error) {
	return f.list, f.listErr
}

func (f *fakeAccounts) GetAccount(_ context.Context, id int64) (*models.Account, error) {
	for _, a := range f.list {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperr.EntityNotFound("account", id)
}

func (f *fakeAccounts) UpdateAccount(_ context.Context, id int64, username, email *string) (*models.Account, error) {
	return f.updateAccount(id, username, email)
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id int64, oldPassword, newPassword string) error {
	return f.updatePassword(id, oldPassword, newPassword)
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, id int64) error {
	return f.deleteAccount(id)
}

// fakeChats records the arguments of the last call it served.
type fakeChats struct {
	chats    []*models.Chat
	messages []*models.Message
	members  []*models.Account
	err      error

	lastCallerID  int64
	lastChatID    int64
	lastAccountID int64
	lastText      string
	lastName      *string
	lastOwnerID   *int64
	existing      bool
}

func (f *fakeChats) ListChats(context.Context) ([]*models.Chat, error) { return f.chats, f.err }

func (f *fakeChats) GetChat(_ context.Context, chatID int64) (*models.Chat, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.chats {
		if c.ID == chatID {
			return c, nil
		}
	}
	return nil, apperr.EntityNotFound("chat", chatID)
}

func (f *fakeChats) CreateChat(_ context.Context, name string, ownerID, callerID int64) (*models.Chat, error) {
	f.lastCallerID = callerID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Chat{ID: 10, Name: name, OwnerID: ownerID}, nil
}

func (f *fakeChats) UpdateChat(_ context.Context, chatID int64, name *string, ownerID *int64) (*models.Chat, error) {
	f.lastChatID, f.lastName, f.lastOwnerID = chatID, name, ownerID
	if f.err != nil {
		return nil, f.err
	}
	c := &models.Chat{ID: chatID, Name: "old", OwnerID: 1}
	if name != nil {
		c.Name = *name
	}
	if ownerID != nil {
		c.OwnerID = *ownerID
	}
	return c, nil
}

func (f *fakeChats) DeleteChat(_ context.Context, chatID int64) error {
	f.lastChatID = chatID
	return f.err
}

func (f *fakeChats) ListMessages(_ context.Context, chatID int64) ([]*models.Message, error) {
	f.lastChatID = chatID
	return f.messages, f.err
}

func (f *fakeChats) CreateMessage(_ context.Context, chatID int64, text string, accountID, callerID int64) (*models.Message, error) {
	f.lastChatID, f.lastText, f.lastAccountID, f.lastCallerID = chatID, text, accountID, callerID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{
		ID:        7,
		Text:      text,
		AccountID: &accountID,
		ChatID:    chatID,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (f *fakeChats) UpdateMessage(_ context.Context, chatID, messageID int64, text string) (*models.Message, error) {
	f.lastChatID, f.lastText = chatID, text
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{ID: messageID, Text: text, ChatID: chatID}, nil
}

func (f *fakeChats) DeleteMessage(_ context.Context, chatID, messageID int64) error {
	f.lastChatID = chatID
	return f.err
}

func (f *fakeChats) ListChatAccounts(_ context.Context, chatID int64) ([]*models.Account, error) {
	f.lastChatID = chatID
	return f.members, f.err
}

func (f *fakeChats) AddMembership(_ context.Context, chatID, accountID int64) (*models.Membership, bool, error) {
	f.lastChatID, f.lastAccountID = chatID, accountID
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.Membership{ChatID: chatID, AccountID: accountID}, !f.existing, nil
}

func (f *fakeChats) DeleteMembership(_ context.Context, chatID, accountID int64) error {
	f.lastChatID, f.lastAccountID = chatID, accountID
	return f.err
}

var errBoom = errors.New("connection reset by peer")

type testServer struct {
	handler  http.Handler
	accounts *fakeAccounts
	chats    *fakeChats
	metrics  *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithOptions(t, Options{
		CORSOrigin:    "http://localhost:5173",
		SessionTTL:    time.Hour,
		AuthRateLimit: 1000,
		AuthRateBurst: 1000,
	})
}

func newTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()
	accounts := &fakeAccounts{tokens: map[string]*models.Account{"good": alice}}
	chats := &fakeChats{}
	m := metrics.New()
	srv := NewServer(opts, accounts, chats, m, logging.Nop{})
	return &testServer{handler: srv.Handler(), accounts: accounts, chats: chats, metrics: m}
}

func (ts *testServer) do(method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		if strings.HasPrefix(body, "{") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	for _, fn := range mutate {
		fn(req)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func ptr[T any](v T) *T { return &v }
