package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/logging"
	"github.com/dmitrijs2005/ponyexpress/internal/server/apperr"
	"github.com/dmitrijs2005/ponyexpress/internal/server/auth"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountService(h *harness) *AccountService {
	s := NewAccountService(h.db, h.rm, auth.NewSessions("k", "http://127.0.0.1", time.Hour), logging.Nop{})
	s.hashPassword = func(p string) (string, error) { return "hashed:" + p, nil }
	s.verifyPassword = func(p, hash string) bool { return hash == "hashed:"+p }
	return s
}

func TestRegister_Success(t *testing.T) {
	h := newHarness(t)
	h.expectCommit()
	s := newAccountService(h)

	a, err := s.Register(context.Background(), "alice", "a@x", "p")
	require.NoError(t, err)
	assert.Equal(t, "alice", a.Username)
	assert.Equal(t, "a@x", a.Email)
	assert.Equal(t, "hashed:p", h.store.accounts[a.ID].HashedPassword)
	h.verify(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.expectCommit()
	h.expectRollback()
	s := newAccountService(h)

	_, err := s.Register(context.Background(), "a", "a@x", "p")
	require.NoError(t, err)

	_, err = s.Register(context.Background(), "b", "a@x", "p2")
	assert.Equal(t, apperr.DuplicateValue("account", "email", "a@x"), err)
	assert.Len(t, h.store.accounts, 1)
	h.verify(t)
}

func TestRegister_UsernameCheckedBeforeEmail(t *testing.T) {
	h := newHarness(t)
	h.store.addAccount("alice", "a@x", "hashed:p")
	h.expectRollback()
	s := newAccountService(h)

	_, err := s.Register(context.Background(), "alice", "a@x", "p")
	assert.Equal(t, apperr.DuplicateValue("account", "username", "alice"), err)
	h.verify(t)
}

func TestRegister_RaceUniqueViolation(t *testing.T) {
	h := newHarness(t)
	h.store.fail["accounts.Create"] = &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}
	h.expectRollback()
	s := newAccountService(h)

	_, err := s.Register(context.Background(), "alice", "a@x", "p")
	assert.Equal(t, apperr.DuplicateValue("account", "email", "a@x"), err)
	h.verify(t)
}

func TestRegister_HashError(t *testing.T) {
	h := newHarness(t)
	h.expectRollback()
	s := newAccountService(h)
	s.hashPassword = func(string) (string, error) { return "", errBoom{} }

	_, err := s.Register(context.Background(), "alice", "a@x", "p")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
	assert.Empty(t, h.store.accounts)
	h.verify(t)
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)
	id := h.store.addAccount("alice", "a@x", "hashed:p")
	s := newAccountService(h)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"ok", "alice", "p", nil},
		{"wrong password", "alice", "nope", apperr.InvalidCredentials()},
		{"unknown user", "bob", "p", apperr.InvalidCredentials()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				h.expectCommit()
			} else {
				h.expectRollback()
			}

			got, err := s.Authenticate(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
	h.verify(t)
}

func TestIssueTokenAndResolveCaller(t *testing.T) {
	h := newHarness(t)
	id := h.store.addAccount("alice", "a@x", "hashed:p")
	h.expectCommit()
	h.expectCommit()
	s := newAccountService(h)

	token, err := s.IssueToken(context.Background(), "alice", "p")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	caller, err := s.ResolveCaller(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, id, caller.ID)
	h.verify(t)
}

func TestIssueToken_BadCredentials(t *testing.T) {
	h := newHarness(t)
	h.expectRollback()
	s := newAccountService(h)

	_, err := s.IssueToken(context.Background(), "ghost", "p")
	assert.Equal(t, apperr.InvalidCredentials(), err)
	h.verify(t)
}

func TestResolveCaller_InvalidToken(t *testing.T) {
	h := newHarness(t)
	s := newAccountService(h)

	_, err := s.ResolveCaller(context.Background(), "garbage")
	assert.Equal(t, apperr.KindInvalidSession, apperr.KindOf(err))
	h.verify(t)
}

func TestResolveCaller_DeletedAccount(t *testing.T) {
	h := newHarness(t)
	h.expectRollback()
	s := newAccountService(h)

	token, err := s.sessions.Issue(999)
	require.NoError(t, err)

	_, err = s.ResolveCaller(context.Background(), token)
	assert.Equal(t, apperr.InvalidSession(), err)
	h.verify(t)
}

func TestListAndGetAccount(t *testing.T) {
	h := newHarness(t)
	a := h.store.addAccount("alice", "a@x", "h")
	b := h.store.addAccount("bob", "b@x", "h")
	h.expectCommit()
	h.expectCommit()
	h.expectRollback()
	s := newAccountService(h)

	list, err := s.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []int64{a, b}, []int64{list[0].ID, list[1].ID})

	got, err := s.GetAccount(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = s.GetAccount(context.Background(), 404)
	assert.Equal(t, apperr.EntityNotFound("account", 404), err)
	h.verify(t)
}

func TestListAccounts_RepoError(t *testing.T) {
	h := newHarness(t)
	h.store.fail["accounts.List"] = errBoom{}
	h.expectRollback()
	s := newAccountService(h)

	_, err := s.ListAccounts(context.Background())
	require.ErrorIs(t, err, errBoom{})
	h.verify(t)
}

func TestUpdateAccount(t *testing.T) {
	h := newHarness(t)
	alice := h.store.addAccount("alice", "a@x", "h")
	h.store.addAccount("bob", "b@x", "h")
	s := newAccountService(h)

	t.Run("same values are a no-op", func(t *testing.T) {
		h.expectCommit()
		got, err := s.UpdateAccount(context.Background(), alice, ptr("alice"), ptr("a@x"))
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("username taken", func(t *testing.T) {
		h.expectRollback()
		_, err := s.UpdateAccount(context.Background(), alice, ptr("bob"), nil)
		assert.Equal(t, apperr.DuplicateValue("account", "username", "bob"), err)
	})

	t.Run("email taken", func(t *testing.T) {
		h.expectRollback()
		_, err := s.UpdateAccount(context.Background(), alice, nil, ptr("b@x"))
		assert.Equal(t, apperr.DuplicateValue("account", "email", "b@x"), err)
	})

	t.Run("applies new values", func(t *testing.T) {
		h.expectCommit()
		got, err := s.UpdateAccount(context.Background(), alice, ptr("alice2"), ptr("a2@x"))
		require.NoError(t, err)
		assert.Equal(t, "alice2", got.Username)
		assert.Equal(t, "a2@x", h.store.accounts[alice].Email)
	})

	t.Run("missing account", func(t *testing.T) {
		h.expectRollback()
		_, err := s.UpdateAccount(context.Background(), 404, ptr("x"), nil)
		assert.Equal(t, apperr.EntityNotFound("account", 404), err)
	})

	h.verify(t)
}

func TestUpdatePassword(t *testing.T) {
	h := newHarness(t)
	id := h.store.addAccount("alice", "a@x", "hashed:old")
	h.expectRollback()
	h.expectCommit()
	s := newAccountService(h)

	err := s.UpdatePassword(context.Background(), id, "wrong", "new")
	assert.Equal(t, apperr.InvalidCredentials(), err)
	assert.Equal(t, "hashed:old", h.store.accounts[id].HashedPassword)

	require.NoError(t, s.UpdatePassword(context.Background(), id, "old", "new"))
	assert.Equal(t, "hashed:new", h.store.accounts[id].HashedPassword)
	h.verify(t)
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness(t)
	owner := h.store.addAccount("owner", "o@x", "h")
	member := h.store.addAccount("member", "m@x", "h")
	chat := h.store.addChat("c1", owner)
	h.store.members[memberKey{member, chat}] = true
	msg := h.store.addMessage(chat, member, "hi")
	s := newAccountService(h)

	h.expectRollback()
	err := s.DeleteAccount(context.Background(), owner)
	assert.Equal(t, apperr.ChatOwnerRemoval(), err)
	assert.Contains(t, h.store.accounts, owner)

	h.expectCommit()
	require.NoError(t, s.DeleteAccount(context.Background(), member))
	assert.NotContains(t, h.store.accounts, member)
	assert.False(t, h.store.members[memberKey{member, chat}])
	assert.Nil(t, h.store.messages[msg].AccountID, "authored messages are detached, not deleted")

	h.expectRollback()
	err = s.DeleteAccount(context.Background(), member)
	assert.Equal(t, apperr.EntityNotFound("account", member), err)
	h.verify(t)
}

func TestDeleteAccount_OwnershipCheckError(t *testing.T) {
	h := newHarness(t)
	id := h.store.addAccount("alice", "a@x", "h")
	h.store.fail["chats.ExistsByOwner"] = errBoom{}
	h.expectRollback()
	s := newAccountService(h)

	err := s.DeleteAccount(context.Background(), id)
	require.True(t, errors.Is(err, errBoom{}))
	h.verify(t)
}
