package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/catalog-console/internal/catalog"
	"github.com/rogerio-castellano/catalog-console/internal/config"
	"github.com/rogerio-castellano/catalog-console/internal/http/handlers"
	rl "github.com/rogerio-castellano/catalog-console/internal/http/rate_limiter"
	"github.com/rogerio-castellano/catalog-console/internal/http/router"
	"github.com/rogerio-castellano/catalog-console/internal/repo"
	"github.com/rogerio-castellano/catalog-console/internal/session"
	"github.com/rogerio-castellano/catalog-console/internal/upstream"
	"github.com/rogerio-castellano/catalog-console/internal/web"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// @title Catalog Console API
// @version 1.0
// @description Product gateway and stub product store behind the catalog admin console.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if level <= slog.LevelDebug {
		cfg.Print()
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "op", "main", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	const op = "main.run"
	log := slog.With("op", op)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions, err := sessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	client, err := upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.Timeout)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Stub.Enabled {
		handlers.SetProductRepo(repo.NewInMemoryProductRepository())
	}

	registry := catalog.NewRegistry(
		catalog.NewGatewayClient(cfg.Gateway.SelfURL, cfg.Upstream.Timeout),
		cfg.Workspace.IdleTTL,
	)
	pages, err := web.New(client, registry, sessions, cfg.Redis.SessionTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	limiter := rl.New(cfg.Gateway.RateLimit, cfg.Gateway.Burst, cfg.Gateway.VisitorTTL)
	metrics := handlers.NewGatewayMetrics()

	srv := &http.Server{
		Addr: cfg.HTTPServerAddr,
		Handler: router.NewRouter(router.Deps{
			Gateway: handlers.NewGateway(client, metrics),
			Metrics: metrics,
			Limiter: limiter,
			Pages:   pages,
			Stub:    cfg.Stub.Enabled,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server running", "addr", cfg.HTTPServerAddr, "upstream", client.URL(), "stub", cfg.Stub.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return limiter.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		return registry.Run(gctx, cfg.Workspace.CleanupInterval)
	})

	return g.Wait()
}

// sessionStore returns the Redis store when an address is configured and the
// in-memory store otherwise.
func sessionStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		slog.Info("using in-memory sessions", "op", "main.sessionStore")
		return session.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	slog.Info("using redis sessions", "op", "main.sessionStore", "addr", cfg.Redis.Addr)
	return session.NewRedisStore(rdb, cfg.Redis.SessionTTL), func() { _ = rdb.Close() }, nil
}
