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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/draft-arena/internal/archive"
	"github.com/DoyleJ11/draft-arena/internal/config"
	"github.com/DoyleJ11/draft-arena/internal/engine"
	"github.com/DoyleJ11/draft-arena/internal/httpapi"
	"github.com/DoyleJ11/draft-arena/internal/lobby"
	"github.com/DoyleJ11/draft-arena/internal/logger"
	"github.com/DoyleJ11/draft-arena/internal/registry"
	"github.com/DoyleJ11/draft-arena/internal/timer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	newLogger := logger.New
	if cfg.LogDevelopment {
		newLogger = logger.NewDevelopment
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New(ctx, registry.Options{
		Expiry:        cfg.SessionExpiry,
		SweepInterval: cfg.SessionSweepInterval,
		Rules:         engine.Rules{SwapWindow: cfg.SwapPhaseSeconds},
	}, log)
	defer reg.Destroy()

	timers := timer.New(ctx, timer.Config{
		PhaseDuration:   cfg.PhaseTimerDuration,
		SwapSeconds:     cfg.SwapPhaseSeconds,
		SwapLockSeconds: cfg.SwapLockSeconds,
		SwapTick:        cfg.SwapTickInterval,
	}, log)
	defer timers.Close()

	var (
		rec   archive.Recorder = archive.Nop{}
		games archive.Reader   = archive.Nop{}
	)
	if cfg.DatabaseURL != "" {
		store, err := archive.Open(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("archive close failed", zap.Error(err))
			}
		}()
		rec, games = store, store
		log.Info("match archive enabled")
	}

	lb := lobby.New(ctx, reg, timers, rec, log)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Lobby:    lb,
			Registry: reg,
			Timers:   timers,
			Games:    games,
			Origins:  cfg.CORSAllowedOrigins,
			Log:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// websocket connections are hijacked, so Shutdown does not wait for
		// them; stopping the lobby closes their outboxes.
		_ = lb.Send(shutdownCtx, lobby.Shutdown{})
		<-lb.Done()
		return err
	})
	return g.Wait()
}
