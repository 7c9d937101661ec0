package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/ponyexpress/internal/client/models"
	"github.com/dmitrijs2005/ponyexpress/internal/common"
	"github.com/samber/lo"
)

var getMultiline = GetMultiline

func parseChatID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("usage: " + usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q", args[0])
	}
	return id, nil
}

func formatChat(c models.Chat, _ int) string {
	return fmt.Sprintf("[%d] %s (owner %d)", c.ID, c.Name, c.OwnerID)
}

func formatMessage(m models.Message, _ int) string {
	author := "(left)"
	if m.AccountID != nil {
		author = strconv.FormatInt(*m.AccountID, 10)
	}
	return fmt.Sprintf("%s #%d <%s> %s", m.CreatedAt.Format("2006-01-02 15:04:05"), m.ID, author, m.Text)
}

func (a *App) Chats(ctx context.Context, _ []string) error {
	chats, err := a.api.ListChats(ctx)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Fprintln(a.out, "No chats yet")
		return nil
	}
	fmt.Fprintln(a.out, strings.Join(lo.Map(chats, formatChat), "\n"))
	return nil
}

// NewChat creates a chat owned by the logged-in account.
func (a *App) NewChat(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrorNotLoggedIn
	}
	if len(args) == 0 {
		return errors.New("usage: newchat <name>")
	}

	chat, err := a.api.CreateChat(ctx, strings.Join(args, " "), a.account.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Created", formatChat(*chat, 0))
	return nil
}

func (a *App) Messages(ctx context.Context, args []string) error {
	chatID, err := parseChatID(args, "messages <chat_id>")
	if err != nil {
		return err
	}

	msgs, err := a.api.ListMessages(ctx, chatID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages yet")
		return nil
	}
	fmt.Fprintln(a.out, strings.Join(lo.Map(msgs, formatMessage), "\n"))
	return nil
}

// Send posts the rest of the line as a message, or prompts for a
// multi-line text when nothing follows the chat id.
func (a *App) Send(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrorNotLoggedIn
	}
	chatID, err := parseChatID(args, "send <chat_id> [text]")
	if err != nil {
		return err
	}

	text := strings.Join(args[1:], " ")
	if text == "" {
		if text, err = getMultiline(a.reader, "Enter message", a.out); err != nil {
			return err
		}
	}
	if text == "" {
		return errors.New("empty message")
	}

	msg, err := a.api.SendMessage(ctx, chatID, text, a.account.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, formatMessage(*msg, 0))
	return nil
}

func (a *App) Join(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrorNotLoggedIn
	}
	chatID, err := parseChatID(args, "join <chat_id>")
	if err != nil {
		return err
	}

	if _, err := a.api.Join(ctx, chatID, a.account.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Joined chat %d\n", chatID)
	return nil
}
