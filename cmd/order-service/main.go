package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"orderhub/internal/notify"
	"orderhub/internal/order"
	"orderhub/internal/order/httpx"
	"orderhub/internal/order/sqlite"
	"orderhub/internal/pkg/cache"
	"orderhub/internal/pkg/metrics"
	"orderhub/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "order-service"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repo, err := sqlite.Open(getEnv("DATABASE_PATH", "./data/orders.db"))
	if err != nil {
		slog.Error("failed to open order store", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Cache and metrics are decorators: leave REDIS_ADDR empty to run
	// without redis and the service works identically minus the cache.
	var orderCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		orderCache = cache.NewRedisCache(addr, "order")
	}
	meter := metrics.New()

	notifyTimeout := getEnvDuration("NOTIFY_TIMEOUT_MS", 3000)
	client := notify.NewClient(getEnv("NOTIFICATION_SERVICE_URL", "http://localhost:8081"), notifyTimeout)
	dispatcher := notify.NewDispatcher(client, getEnvInt("NOTIFY_BUFFER", 256), notifyTimeout)
	go dispatcher.Run(ctx)

	service := order.NewService(repo, dispatcher, orderCache, meter)
	router := httpx.NewRouter(httpx.NewHandler(service), meter.Handler())

	srv := &http.Server{
		Addr:              ":" + getEnv("PORT", "8080"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("order service running", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server error", "error", err)
		os.Exit(1)
	}

	// Let the dispatcher finish its in-flight notification attempt.
	<-dispatcher.Done()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallbackMS int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMS)) * time.Millisecond
}
