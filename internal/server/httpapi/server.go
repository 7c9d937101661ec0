// Package httpapi exposes the PonyExpress JSON API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/logging"
	"github.com/dmitrijs2005/ponyexpress/internal/server/metrics"
	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// AccountService is the account half of the policy engine.
type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*models.Account, error)
	IssueToken(ctx context.Context, username, password string) (string, error)
	ResolveCaller(ctx context.Context, token string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	UpdateAccount(ctx context.Context, id int64, username, email *string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, id int64) error
}

// ChatService covers chats, messages and memberships.
type ChatService interface {
	ListChats(ctx context.Context) ([]*models.Chat, error)
	GetChat(ctx context.Context, chatID int64) (*models.Chat, error)
	CreateChat(ctx context.Context, name string, ownerID, callerID int64) (*models.Chat, error)
	UpdateChat(ctx context.Context, chatID int64, name *string, ownerID *int64) (*models.Chat, error)
	DeleteChat(ctx context.Context, chatID int64) error

	ListMessages(ctx context.Context, chatID int64) ([]*models.Message, error)
	CreateMessage(ctx context.Context, chatID int64, text string, accountID, callerID int64) (*models.Message, error)
	UpdateMessage(ctx context.Context, chatID, messageID int64, text string) (*models.Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	ListChatAccounts(ctx context.Context, chatID int64) ([]*models.Account, error)
	AddMembership(ctx context.Context, chatID, accountID int64) (*models.Membership, bool, error)
	DeleteMembership(ctx context.Context, chatID, accountID int64) error
}

// Options carries the transport-level settings of the server.
type Options struct {
	Addr          string
	CORSOrigin    string
	SessionTTL    time.Duration
	AuthRateLimit float64
	AuthRateBurst int
}

type Server struct {
	addr       string
	corsOrigin string
	sessionTTL time.Duration

	accounts AccountService
	chats    ChatService
	logger   logging.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	limiter  *RateLimiter
}

func NewServer(opts Options, accounts AccountService, chats ChatService, m *metrics.Metrics, l logging.Logger) *Server {
	logger := l.With("module", "http_server")
	return &Server{
		addr:       opts.Addr,
		corsOrigin: opts.CORSOrigin,
		sessionTTL: opts.SessionTTL,
		accounts:   accounts,
		chats:      chats,
		logger:     logger,
		metrics:    m,
		validate:   newValidator(),
		limiter:    NewRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst, logger),
	}
}

// Handler builds the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Instrument)

	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.Use(s.limiter.Handler)
	auth.HandleFunc("/registration", s.handleRegistration).Methods(http.MethodPost)
	auth.HandleFunc("/token", s.handleToken).Methods(http.MethodPost)
	auth.HandleFunc("/web/login", s.handleWebLogin).Methods(http.MethodPost)
	auth.HandleFunc("/web/logout", s.authenticated(s.handleWebLogout)).Methods(http.MethodPost)

	r.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	r.HandleFunc("/accounts/me", s.authenticated(s.handleGetMe)).Methods(http.MethodGet)
	r.HandleFunc("/accounts/me", s.authenticated(s.handleUpdateMe)).Methods(http.MethodPut)
	r.HandleFunc("/accounts/me", s.authenticated(s.handleDeleteMe)).Methods(http.MethodDelete)
	r.HandleFunc("/accounts/me/password", s.authenticated(s.handleUpdatePassword)).Methods(http.MethodPut)
	r.HandleFunc("/accounts/{account_id:[0-9]+}", s.handleGetAccount).Methods(http.MethodGet)

	r.HandleFunc("/chats", s.handleListChats).Methods(http.MethodGet)
	r.HandleFunc("/chats", s.authenticated(s.handleCreateChat)).Methods(http.MethodPost)
	r.HandleFunc("/chats/{chat_id:[0-9]+}", s.handleGetChat).Methods(http.MethodGet)
	r.HandleFunc("/chats/{chat_id:[0-9]+}", s.handleUpdateChat).Methods(http.MethodPut)
	r.HandleFunc("/chats/{chat_id:[0-9]+}", s.handleDeleteChat).Methods(http.MethodDelete)

	r.HandleFunc("/chats/{chat_id:[0-9]+}/messages", s.handleListMessages).Methods(http.MethodGet)
	r.HandleFunc("/chats/{chat_id:[0-9]+}/messages", s.authenticated(s.handleCreateMessage)).Methods(http.MethodPost)
	r.HandleFunc("/chats/{chat_id:[0-9]+}/messages/{message_id:[0-9]+}", s.handleUpdateMessage).Methods(http.MethodPut)
	r.HandleFunc("/chats/{chat_id:[0-9]+}/messages/{message_id:[0-9]+}", s.handleDeleteMessage).Methods(http.MethodDelete)

	r.HandleFunc("/chats/{chat_id:[0-9]+}/accounts", s.handleListChatAccounts).Methods(http.MethodGet)
	r.HandleFunc("/chats/{chat_id:[0-9]+}/accounts", s.handleAddMembership).Methods(http.MethodPost)
	r.HandleFunc("/chats/{chat_id:[0-9]+}/accounts/{account_id:[0-9]+}", s.handleDeleteMembership).Methods(http.MethodDelete)

	var h http.Handler = r
	h = cors(s.corsOrigin)(h)
	h = accessLog(s.logger)(h)
	h = requestID(h)
	return h
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
