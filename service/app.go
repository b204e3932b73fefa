package service

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"inkwell/app/apiclient"
	"inkwell/app/config"
	"inkwell/app/repositories"
	"inkwell/app/routes"
	"inkwell/app/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

// App is the running blog: an HTTP server in front of the remote API, with
// the auth store open.
type App struct {
	Server   *http.Server
	listener net.Listener
	db       *badger.DB
	logger   *slog.Logger
}

// NewApp opens the auth store, wires the services and binds cfg.Addr.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := repositories.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}

	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	authService := services.NewAuthService(
		repositories.NewBadgerUserRepository(db),
		repositories.NewBadgerSessionRepository(db),
		cfg.SessionTTL,
		logger,
	)
	router := routes.SetupRoutes(routes.Services{
		Posts:    services.NewPostService(client, client, cfg.Revalidate, logger),
		Comments: services.NewCommentService(client, logger),
		Auth:     authService,
	}, routes.Options{
		SessionTTL:    cfg.SessionTTL,
		CookieSecure:  cfg.CookieSecure,
		RedirectDelay: cfg.RedirectDelay,
	}, logger)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "listen on %s", cfg.Addr)
	}

	logger.Info("blog ready", "addr", ln.Addr().String(), "api", client.BaseURL(), "db", cfg.DBPath)
	return &App{
		Server:   routes.NewServer(cfg.Addr, router),
		listener: ln,
		db:       db,
		logger:   logger,
	}, nil
}

// Addr is the address the server is listening on.
func (a *App) Addr() string {
	return a.listener.Addr().String()
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// closes the store.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Server.Serve(a.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
