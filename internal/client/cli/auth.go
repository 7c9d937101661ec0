package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ponyexpress/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for username, email and password and creates the account.
// It does not log in.
func (a *App) Register(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	account, err := a.api.Register(ctx, userName, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id=%d)\n", account.Username, account.ID)
	return nil
}

// Login exchanges credentials for a session token and caches the caller's
// own account for later commands.
func (a *App) Login(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, userName, string(password)); err != nil {
		return err
	}

	account, err := a.api.Me(ctx)
	if err != nil {
		a.api.Logout()
		return err
	}

	a.account = account
	fmt.Fprintf(a.out, "Logged in as %s\n", account.Username)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrorNotLoggedIn
	}
	a.api.Logout()
	a.account = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrorNotLoggedIn
	}

	account, err := a.api.Me(ctx)
	if err != nil {
		return err
	}

	a.account = account
	fmt.Fprintf(a.out, "id=%d username=%s email=%s\n", account.ID, account.Username, account.Email)
	return nil
}
