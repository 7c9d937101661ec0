// Package server wires configuration, storage, the policy services and the
// HTTP and gRPC endpoints into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/logging"
	"github.com/dmitrijs2005/ponyexpress/internal/server/auth"
	"github.com/dmitrijs2005/ponyexpress/internal/server/config"
	"github.com/dmitrijs2005/ponyexpress/internal/server/httpapi"
	"github.com/dmitrijs2005/ponyexpress/internal/server/metrics"
	"github.com/dmitrijs2005/ponyexpress/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ponyexpress/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/ponyexpress/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sessions := auth.NewSessions(c.SecretKey, c.SessionIssuer, c.SessionValidityDuration)
	accounts := services.NewAccountService(db, rm, sessions, logger)
	chats := services.NewChatService(db, rm, logger)

	httpServer := httpapi.NewServer(httpapi.Options{
		Addr:          c.EndpointAddrHTTP,
		CORSOrigin:    c.CORSAllowedOrigin,
		SessionTTL:    c.SessionValidityDuration,
		AuthRateLimit: c.AuthRateLimit,
		AuthRateBurst: c.AuthRateBurst,
	}, accounts, chats, metrics.New(), logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// the database answered a ping in NewApp; a server that fails to start
	// pins the status back to NOT_SERVING
	app.grpcServer.SetServing(true)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err.Error())
	}
	app.logger.Info(context.Background(), "App stopped")

	if err := logging.Sync(app.logger); err != nil {
		fmt.Fprintf(os.Stderr, "logger sync error: %v\n", err)
	}
}
