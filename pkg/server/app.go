package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeDeck/internal/handler/api"
	"TradeDeck/internal/service/ratelimit"
	"TradeDeck/internal/usecase"
	"TradeDeck/pkg/cache"
	pkgch "TradeDeck/pkg/clickhouse"
	"TradeDeck/pkg/config"
	xhttp "TradeDeck/pkg/http"

	drepo "TradeDeck/internal/domain/repository"
	applogger "TradeDeck/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP API, realtime
// collector, and infrastructure clients.
type App struct {
	cfg        *config.Config
	handler    *api.DashboardHandler
	collector  *usecase.TickCollector
	clients    *ratelimit.ClientLimiter
	chClient   *pkgch.Client
	cache      cache.Service
	publisher  drepo.SignalPublisher
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates an App with all dependencies injected.
func New(
	cfg *config.Config,
	handler *api.DashboardHandler,
	collector *usecase.TickCollector,
	clients *ratelimit.ClientLimiter,
	chClient *pkgch.Client,
	c cache.Service,
	publisher drepo.SignalPublisher,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		handler:   handler,
		collector: collector,
		clients:   clients,
		chClient:  chClient,
		cache:     c,
		publisher: publisher,
		log:       log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithClientLimiter(a.clients, a.cfg.Server.TrustProxy),
		xhttp.WithLogger(a.log),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("collector error", applogger.Error(err))
			}
		}()
		a.log.Info("collector started", applogger.Strings("symbols", a.cfg.Providers.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.collector != nil {
		if err := a.collector.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
