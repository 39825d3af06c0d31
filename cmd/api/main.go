package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gigfolk/boxoffice/internal/app"
	"github.com/gigfolk/boxoffice/internal/bookingcode"
	"github.com/gigfolk/boxoffice/internal/cache"
	"github.com/gigfolk/boxoffice/internal/clock"
	"github.com/gigfolk/boxoffice/internal/config"
	"github.com/gigfolk/boxoffice/internal/metrics"
	"github.com/gigfolk/boxoffice/internal/storage/postgres"
	transporthttp "github.com/gigfolk/boxoffice/internal/transport/http"
	"github.com/gigfolk/boxoffice/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Warn(".env not loaded", "error", err)
	}
	cfg := config.Load()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	var avail *cache.Availability
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			logger.Warn("redis ping failed, availability cache disabled", "error", err)
		} else {
			avail = cache.NewAvailability(rdb, cfg.AvailabilityTTL)
			logger.Info("availability cache enabled", "addr", cfg.RedisAddr)
		}
	}

	clk := clock.NewSystem()

	checkoutRepo := postgres.NewCheckoutRepository(pool, cfg.LockTimeout)
	checkoutSvc := app.NewCheckoutService(checkoutRepo, bookingcode.New(), clk,
		app.WithAvailabilityInvalidator(avail))
	cartRepo := postgres.NewCartRepository(pool)
	cartSvc := app.NewCartService(cartRepo, clk)
	orderRepo := postgres.NewOrderRepository(pool)
	orderSvc := app.NewOrderService(orderRepo, clk,
		app.WithOrderAvailabilityInvalidator(avail))
	adminRepo := postgres.NewAdminRepository(pool)
	adminSvc := app.NewAdminService(adminRepo, clk)
	catalogSvc := app.NewCatalogService(adminRepo, avail)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/carts", transporthttp.HandleCreateCart(cartSvc))
	mux.Handle("/carts/", transporthttp.HandleCartRoutes(cartSvc, checkoutSvc))
	mux.Handle("/orders/", transporthttp.HandleOrderRoutes(orderSvc))
	mux.Handle("/events/", transporthttp.HandleEventRoutes(catalogSvc))
	mux.Handle("/admin/events", transporthttp.HandleAdminEvents(adminSvc))
	mux.Handle("/admin/events/", transporthttp.HandleAdminEventRoutes(adminSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsOrigins := parseCSV(cfg.CORSOrigins)
	handler := transporthttp.RequestLogger(transporthttp.CORS(corsOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
