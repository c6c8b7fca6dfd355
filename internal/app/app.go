package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/linechat/internal/auth"
	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	applog "github.com/vovakirdan/linechat/internal/log"
	"github.com/vovakirdan/linechat/internal/store"
	"github.com/vovakirdan/linechat/internal/store/sqlite"
	"github.com/vovakirdan/linechat/internal/transport/tcp"
	transporthttp "github.com/vovakirdan/linechat/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	tcp             *tcp.Server
	http            *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.CredentialStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("credential store initialized")

	authService := auth.NewService(st, cfg.BcryptCost)

	hub := core.NewHub(authService, core.HubOptions{
		Options: core.Options{
			MaxClientsPerChannel: cfg.MaxClientsPerChannel,
			HistorySize:          cfg.HistorySize,
		},
		OutboundBuffer: cfg.OutboundBuffer,
	}, applog.Component(logger, "core"))

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}
	// An empty address disables that listener.
	if cfg.TCPAddr != "" {
		a.tcp = tcp.NewServer(hub, cfg, applog.Component(logger, "tcp"))
	}
	if cfg.HTTPAddr != "" {
		a.http = transporthttp.NewServer(hub, authService, cfg, applog.Component(logger, "http"))
	}
	return a, nil
}

// Hub exposes the running hub.
func (a *App) Hub() *core.Hub {
	return a.hub
}

// Run starts the configured listeners and blocks until ctx is cancelled or
// one of them fails. Either way all of them are stopped before it returns.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gCtx := errgroup.WithContext(ctx)

	if a.tcp != nil {
		g.Go(func() error {
			return a.tcp.Serve(gCtx)
		})
	}

	if a.http != nil {
		// WebSocket handlers end with the group.
		a.http.BaseContext = func(net.Listener) context.Context { return gCtx }

		g.Go(func() error {
			a.log.Info().Str("addr", a.http.Addr).Msg("http server listening")
			if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
			defer cancel()

			a.log.Info().Msg("shutting down http server")
			if err := a.http.Shutdown(shutdownCtx); err != nil {
				_ = a.http.Close()
				return fmt.Errorf("http shutdown: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
