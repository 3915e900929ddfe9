package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"rag-streamprobe/internal/adapter/stubrag"
	"rag-streamprobe/internal/infra/config"
	"rag-streamprobe/internal/infra/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewWithOTel(os.Getenv("OTEL_LOGS_ENABLED") == "true")
	slog.SetDefault(log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler := stubrag.NewHandler(time.Duration(cfg.StubChunkDelay)*time.Millisecond, log)
	stubrag.RegisterRoutes(e, handler)

	// h2c keeps streaming working over HTTP/2 without TLS.
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(e, &http2.Server{}),
	}

	go func() {
		log.Info("Starting stub server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
