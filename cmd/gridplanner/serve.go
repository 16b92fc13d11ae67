package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"grid-planner/config"
)

const shutdownGrace = 5 * time.Second

func ServeCmd() *cobra.Command {
	var configFile, addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "serve path queries over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := cfg.Logger(os.Stderr)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	c.Flags().StringVar(&configFile, "config", "", "hjson config file (defaults when empty)")
	c.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return c
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	addr := cfg.Server.Addr
	engine, store, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	changes, unsubscribe := store.Subscribe(64)
	defer unsubscribe()
	go func() {
		if err := engine.WatchObstacles(ctx, changes); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("obstacle_watch_stopped", slog.String("error", err.Error()))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewController(engine, store, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
