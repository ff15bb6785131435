package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/blogapi/internal/db"
	"github.com/nkiryanov/blogapi/internal/handlers"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/repository/postgres"
	"github.com/nkiryanov/blogapi/internal/service/auth"
	"github.com/nkiryanov/blogapi/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/blogapi/internal/service/blog"
	"github.com/nkiryanov/blogapi/internal/service/comment"
	"github.com/nkiryanov/blogapi/internal/service/like"
	"github.com/nkiryanov/blogapi/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
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
	authService, err := auth.NewService(auth.Config{
		Token: tokenmanager.Config{
			AccessSecret:  c.AccessSecret,
			RefreshSecret: c.RefreshSecret,
			AccessTTL:     c.AccessTTL,
			RefreshTTL:    c.RefreshTTL,
		},
		AdminEmails: c.AdminEmails,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	blogService := blog.NewService(storage)
	commentService := comment.NewService(storage)
	likeService := like.NewService(storage)
	userService := user.NewService(nil, storage)

	mux := handlers.NewRouter(
		handlers.RouterConfig{
			// Plain http in development, so the browser still sends the cookie
			SecureCookie: c.Environment == logger.EnvProduction,
		},
		authService,
		blogService,
		commentService,
		likeService,
		userService,
		l,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     l,
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
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
