// Package main GridNode API
//
// @title           GridNode API
// @version         1.0
// @description     API сервиса оценки риска криптокошельков: сессии, тарифы, проверки адресов и оплата.

// @contact.name   GridNode Support
// @contact.email  admin@gridnode.info

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/gridnode/docs"
	"github.com/magabrotheeeer/gridnode/internal/app/gridnode"
	"github.com/magabrotheeeer/gridnode/internal/config"
	"github.com/magabrotheeeer/gridnode/internal/lib/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	log.Info("starting gridnode", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := gridnode.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("gridnode stopped gracefully")
}
