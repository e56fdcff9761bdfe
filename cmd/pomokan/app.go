package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pomokan/pomokan/internal/db"
	"github.com/pomokan/pomokan/internal/handlers"
	"github.com/pomokan/pomokan/internal/handlers/middleware"
	"github.com/pomokan/pomokan/internal/logger"
	"github.com/pomokan/pomokan/internal/repository/postgres"
	"github.com/pomokan/pomokan/internal/service/auth"
	"github.com/pomokan/pomokan/internal/service/auth/sessions"
	"github.com/pomokan/pomokan/internal/service/auth/tokencodec"
	"github.com/pomokan/pomokan/internal/service/todo"
	"github.com/pomokan/pomokan/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	appLogger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	codec, err := tokencodec.New(tokencodec.Config{
		SecretKey: c.SecretKey,
		Alg:       c.Algorithm,
		AccessTTL: time.Duration(c.AccessTokenTTLMin) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	sessionManager, err := sessions.New(sessions.Config{
		SessionTTL: time.Duration(c.RefreshTokenTTLMin) * time.Minute,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating session manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, codec, sessionManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(nil, storage.User())
	todoService := todo.NewService(storage)

	// Initialize handlers and router
	mux := handlers.NewRouter(
		handlers.NewAuth(authService, appLogger),
		handlers.NewTodo(todoService, appLogger),
		handlers.NewUser(userService, appLogger),
		middleware.AuthMiddleware(authService),
		middleware.LoggerMiddleware(appLogger),
		middleware.CORSMiddleware(c.CORSOrigin),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
