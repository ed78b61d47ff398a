package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"skima/internal/app/server"
	"skima/internal/platform/config"
)

func main() {
	dbPath := flag.String("db-path", "", "SQLite database file; overrides database_url")
	addr := flag.String("addr", "", "listen address; overrides addr")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabaseURL = *dbPath
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		app.Logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
