package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"example.com/storefront/internal/app"
	"example.com/storefront/internal/logx"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logx.Info().Msg("no .env file found, using system environment variables")
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		logx.Fatal().Err(err).Msg("load config")
	}
	logx.Init(cfg.Env)

	router, cleanup, err := app.NewServer(cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("init")
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logx.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logx.Error().Err(err).Msg("server stopped")
	}
}
