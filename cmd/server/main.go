package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/diewo77/go-crm-panel/auth"
	"github.com/diewo77/go-crm-panel/internal/backend"
	"github.com/diewo77/go-crm-panel/internal/config"
	"github.com/diewo77/go-crm-panel/internal/db"
	"github.com/diewo77/go-crm-panel/internal/handlers"
	"github.com/diewo77/go-crm-panel/internal/metrics"
	"github.com/diewo77/go-crm-panel/internal/refdata"
	"github.com/diewo77/go-crm-panel/internal/session"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Create the reference cache tables and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := newLogger(cfg.App.Dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Reference data cache
	conn, err := db.Open(cfg.RefData.CacheDriver, cfg.RefData.CacheDSN, logger)
	if err != nil {
		logger.Fatal("open reference cache", zap.Error(err))
	}
	if err := db.Migrate(conn); err != nil {
		logger.Fatal("migrate reference cache", zap.Error(err))
	}
	if *migrateOnlyFlag {
		logger.Info("migrations completed")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Session.Secret == "" {
		logger.Warn("SESSION_SECRET not set, using the development secret")
	}
	auth.SetSecret(cfg.Session.Secret)

	sessions, closeSessions, err := openSessions(ctx, cfg.Session, logger)
	if err != nil {
		logger.Fatal("open session store", zap.Error(err))
	}
	defer closeSessions()

	m := metrics.New()

	var provider refdata.Provider
	if cfg.RefData.ProviderURL != "" {
		provider = refdata.NewHTTPProvider(cfg.RefData.ProviderURL, time.Duration(cfg.RefData.Timeout)*time.Second)
	} else {
		logger.Warn("REFDATA_URL not set, geography lists come from the cache only")
	}
	refs := refdata.NewService(provider, refdata.NewCache(conn), cfg.RefData.CacheTTL, logger, m)

	api := backend.New(backend.Options{
		BaseURL: cfg.Backend.URL,
		Timeout: time.Duration(cfg.Backend.Timeout) * time.Second,
		Signer:  backend.SignerFor(cfg.Backend.AuthMode, cfg.Backend.Token, cfg.Backend.ForwardCookies),
	}, logger, m)

	routerCfg := handlers.NewRouterConfig(handlers.Deps{
		Backend:           api,
		RefData:           refs,
		Sessions:          sessions,
		Logger:            logger,
		Metrics:           m,
		PrefillFromRecord: cfg.App.PrefillFromRecord(),
	})

	key, err := csrfKey(cfg.App.CSRFKey)
	if err != nil {
		logger.Fatal("csrf key", zap.Error(err))
	}
	if cfg.App.CSRFKey == "" {
		logger.Warn("CSRF_KEY not set, forms stop validating after a restart")
	}

	appHandler := NewApp(routerCfg, m, logger, Options{
		SessionTTL: cfg.Session.TTL,
		CSRFKey:    key,
		Secure:     cfg.App.Secure,
	})

	// Create server with config timeouts
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("backend", cfg.Backend.URL),
			zap.String("sessions", cfg.Session.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openSessions returns the configured store and a cleanup func. The memory
// store sweeps expired sessions until ctx ends.
func openSessions(ctx context.Context, cfg config.SessionConfig, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisStore(client, cfg.TTL), func() { _ = client.Close() }, nil
	case "memory", "":
		store := session.NewMemoryStore(cfg.TTL)
		go store.RunSweeper(ctx, time.Minute)
		return store, func() {}, nil
	default:
		logger.Warn("unknown session store, using memory", zap.String("store", cfg.Store))
		return openSessions(ctx, config.SessionConfig{Store: "memory", TTL: cfg.TTL}, logger)
	}
}

// csrfKey derives the 32-byte token key from the configured secret, or
// generates a random one when none is set.
func csrfKey(secret string) ([]byte, error) {
	if secret != "" {
		sum := sha256.Sum256([]byte(secret))
		return sum[:], nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
