package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/config"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/db"
	httpx "github.com/vinicius0026/hapi-postgres-boilerplate/internal/http"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/observability"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/repo/instrumented"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/repo/postgres"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/session"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx := context.Background()

	// tracing is opt-in via the OTLP endpoint
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "users-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			_ = shutdownTracer(context.Background())
		}()
	}

	// storage

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	usersRepo := instrumented.NewUsersRepo(postgres.NewUsersRepo(pool), prom)
	usersService := users.NewService(usersRepo)

	if err := db.EnsureAdminUser(ctx, usersService, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// sessions: redis when configured, in-process TTL map otherwise

	var sessions session.Store

	var redisStore *session.RedisStore

	if cfg.RedisAddr != "" {
		redisStore = session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		if err := redisStore.Ping(ctx); err != nil {
			log.Error("redis connection failed", "err", err)
			os.Exit(1)
		}

		defer redisStore.Close()

		sessions = redisStore
	} else {
		sessions = session.NewMemoryStore()
	}

	manager := session.NewManager(cfg.CookieSecret, cfg.SessionTTL())

	ping := func() error {
		pctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := pool.Ping(pctx); err != nil {
			return err
		}

		if redisStore != nil {
			return redisStore.Ping(pctx)
		}

		return nil
	}

	router := httpx.NewRouter(log, httpx.Deps{
		Cfg:      cfg,
		Users:    usersService,
		Manager:  manager,
		Sessions: sessions,
		Metrics:  prom,
		Gatherer: reg,
		Ping:     ping,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(sctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
