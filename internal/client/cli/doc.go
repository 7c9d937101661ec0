// Package cli provides the interactive PonyExpress command-line client.
//
// It wires configuration and the HTTP API client into a small REPL. A
// background watcher pings the server and flips the prompt between online
// and offline.
//
// Commands:
//   - register / login / logout / me
//   - chats, newchat <name>, join <chat_id>
//   - messages <chat_id>, send <chat_id> [text]
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
