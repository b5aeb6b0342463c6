package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/reporting-api/internal/config"
	"github.com/AngelCh415/reporting-api/internal/httpx"
	"github.com/AngelCh415/reporting-api/internal/ingest"
	"github.com/AngelCh415/reporting-api/internal/metrics"
	"github.com/AngelCh415/reporting-api/internal/store"
)

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     cfg.Logger.SlogLevel(),
		AddSource: cfg.Logger.AddSource,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tenants, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opt := metrics.Options{PNLFields: cfg.Reports.PNLFields}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           httpx.NewRouter(logger, tenants, opt, cfg.HTTP.AllowedOrigins),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("port", cfg.HTTP.Port), slog.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Warn("signal received, shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// openStore devuelve los tenants según store.driver y la función para cerrarlos.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Tenants, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		mt, err := store.ConnectMongo(ctx, store.MongoConfig{
			URI:            cfg.Store.URI,
			ConnectTimeout: cfg.Store.ConnectTimeout,
			QueryTimeout:   cfg.Store.QueryTimeout,
			ConnectRetries: cfg.Store.ConnectRetries,
			AllowedTenants: cfg.Store.AllowedTenants,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return mt, func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mt.Close(cctx); err != nil {
				log.Warn("mongo disconnect", slog.String("err", err.Error()))
			}
		}, nil
	default:
		mem := store.NewMemoryTenants(cfg.Store.AllowedTenants)
		if cfg.Store.Seed != "" {
			seed, err := ingest.Load(ctx, ingest.NewHTTPClient(cfg.Store.SeedTimeout), cfg.Store.Seed)
			if err != nil {
				return nil, nil, err
			}
			n := seed.Apply(mem, log)
			log.Info("seed loaded", slog.String("source", cfg.Store.Seed), slog.Int("docs", n))
		}
		return mem, func() {}, nil
	}
}
