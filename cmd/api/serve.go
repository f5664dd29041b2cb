package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"vet-records/internal/adapters/auth/jwtauth"
	"vet-records/internal/adapters/storage"
	"vet-records/internal/adapters/storage/migrations"
	"vet-records/internal/platform/metrics"
	"vet-records/internal/platform/tracing"
	"vet-records/internal/ports/auth"
	"vet-records/internal/router"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}

	if cfg.DB.MigrateOnStart {
		if err := migrations.Up(cfg.DB.Driver, cfg.DB.DSN); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}

	db, dialect, err := storage.Open(cfg.DB.Driver, cfg.DB.DSN, cfg.DB.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	tp, err := tracing.NewProvider(tracing.Config{
		Exporter:    cfg.Tracing.Exporter,
		SampleRate:  cfg.Tracing.SampleRate,
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	// sin verifier => modo dev (headers X-Debug-*)
	var verifier auth.AuthVerifier
	if !cfg.Auth.DevMode {
		verifier = jwtauth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: router.NewRouter(router.Options{
			AuthVerifier: verifier,
			DB:           db,
			Dialect:      dialect,
			Logger:       log,
			Metrics:      metrics.New(),
			Tracer:       tp.Tracer(),
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{
			"addr":     cfg.HTTP.Addr,
			"driver":   dialect.Name(),
			"dev_mode": cfg.Auth.DevMode,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down", nil)
		err := srv.Shutdown(shutdownCtx)
		if terr := tp.Shutdown(shutdownCtx); terr != nil {
			log.Warn("tracing shutdown failed", map[string]any{"err": terr.Error()})
		}
		return err
	})

	return g.Wait()
}
