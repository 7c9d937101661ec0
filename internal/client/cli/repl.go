package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

type command func(ctx context.Context, args []string) error

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Me(ctx context.Context, args []string) error
	Chats(ctx context.Context, args []string) error
	NewChat(ctx context.Context, args []string) error
	Messages(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Join(ctx context.Context, args []string) error
}

// runREPL reads commands line by line and dispatches them to a.
//
//	Not logged in:
//	  - help, register, login, chats, messages <chat_id>, exit | quit
//
//	Logged in, additionally:
//	  - me, newchat <name>, send <chat_id> [text], join <chat_id>, logout
//
// Command errors are printed and the loop continues. The loop exits on
// scanner EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	commands := map[string]command{
		"register": a.Register,
		"login":    a.Login,
		"logout":   a.Logout,
		"me":       a.Me,
		"chats":    a.Chats,
		"newchat":  a.NewChat,
		"messages": a.Messages,
		"send":     a.Send,
		"join":     a.Join,
	}

	for {
		printlnFn(fmt.Sprintf("pony %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, chats, newchat, messages, send, join, logout, exit")
			} else {
				printlnFn("Available commands: register, login, chats, messages, exit")
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		fn, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := fn(ctx, args); err != nil {
			printlnFn("error:", err.Error())
		}
	}
}
