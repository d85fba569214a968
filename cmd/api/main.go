package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/rentdoc/internal/bootstrap"
	"github.com/bryanwahyu/rentdoc/internal/config"
	"github.com/bryanwahyu/rentdoc/internal/infra/httpserver"
	"github.com/bryanwahyu/rentdoc/internal/logger"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logger.Log.Fatalf("config load error: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Log.Fatalf("logger init error: %v", err)
	}

	ctx := context.Background()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("startup error: %v", err)
	}
	defer app.Close()
	if app.Docs.Repo == nil {
		logger.Log.Warn("database driver is none, analyses are not recorded")
	}

	// init router
	handler := httpserver.NewRouter(app.Docs, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		APIKeys:        cfg.Auth.APIKeys,
		RateRPS:        cfg.Server.RateLimit.RPS,
		RateBurst:      cfg.Server.RateLimit.Burst,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		HealthCheckers: app.Checks,
	})
	if len(cfg.Auth.APIKeys) == 0 {
		logger.Log.Warn("auth.apiKeys is empty, API is unauthenticated")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Log.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Log.Errorf("shutdown error: %v", err)
	}
}
