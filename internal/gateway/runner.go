// internal/gateway/runner.go
package gateway

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-gateway/internal/config"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/provider"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/quote"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/relay"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/server"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/token"
)

// Runner собирает все сервисы гейтвея из конфигурации и управляет их
// жизненным циклом. Все зависимости конструируются явно и передаются
// вниз — глобальных экземпляров сервисов нет.
type Runner struct {
	logger     *zap.Logger
	cfg        *config.Config
	srv        *server.Server
	shutdown   *ShutdownHandler
	shutdownCh chan os.Signal
}

// NewRunner принимает cfg и logger.
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	providers := buildProviders(cfg.Providers)

	fetcher := provider.NewFetcher(providers, logger)
	tokens := token.NewService(fetcher, logger)
	engine := quote.NewEngine()

	var trades server.TradeBuilder
	if cfg.RelayerURL != "" {
		trades = relay.NewClient(cfg.RelayerURL, cfg.RelayerAPIKey, logger)
	}

	cache := server.NewTokenCache(time.Duration(cfg.CacheTTLMs)*time.Millisecond, logger)

	handlers := &server.Handlers{
		Tokens:        tokens,
		Engine:        engine,
		Health:        fetcher,
		HealthClasses: fetcher.Providers(),
		Relay:         trades,
		Cache:         cache,
		Logger:        logger.Named("http"),
		DevMode:       cfg.DebugLogging,
	}

	srv, err := server.New(server.Deps{
		Handlers: handlers,
		Config:   server.Config{Addr: cfg.ListenAddr, DevMode: cfg.DebugLogging},
	})
	if err != nil {
		return nil, err
	}

	r := &Runner{
		logger:     logger,
		cfg:        cfg,
		srv:        srv,
		shutdown:   NewShutdownHandler(logger.Named("shutdown"), 30*time.Second),
		shutdownCh: make(chan os.Signal, 1),
	}
	r.shutdown.AddFunc("http-server", func() error {
		return srv.Shutdown(context.Background())
	})
	return r, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала остановки.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("Gateway listening",
			zap.String("addr", r.cfg.ListenAddr),
			zap.Int("providers", len(r.cfg.Providers)),
			zap.Bool("relayer_configured", r.cfg.RelayerURL != ""))
		if err := r.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-r.shutdownCh:
		r.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		r.logger.Info("Context cancelled, shutting down")
	}

	return r.shutdown.Shutdown(context.Background())
}

func buildProviders(configs []config.ProviderConfig) []provider.Provider {
	providers := make([]provider.Provider, 0, len(configs))
	for _, pc := range configs {
		providers = append(providers, provider.Provider{
			Name:       pc.Name,
			BaseURL:    pc.BaseURL,
			Headers:    pc.Headers,
			Timeout:    pc.Timeout(),
			HealthPath: pc.HealthPath,
		})
	}
	return providers
}
