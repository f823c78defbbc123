package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/loandesk/loandesk/internal/config"
	"github.com/loandesk/loandesk/internal/infra"
	"github.com/loandesk/loandesk/internal/logging"
	"github.com/loandesk/loandesk/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("app", cfg.AppName, "env", cfg.AppEnv)

	ctx := context.Background()

	backends, err := infra.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("connect backends", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Warn("close backends", "error", err)
		}
	}()

	srv, err := server.New(cfg, backends.DB, backends.Cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
