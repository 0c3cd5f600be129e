package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/seclens/seclens/internal/config"
	"github.com/seclens/seclens/internal/session"
	"github.com/seclens/seclens/internal/web"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sessions, cleanup, err := buildSessionStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer cleanup()

	server, err := web.NewServer(cfg, sessions, web.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Starting seclens console on %s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// buildSessionStore wires the configured session backend. The returned
// cleanup stops the expiry sweeper and closes connections.
func buildSessionStore(cfg *config.Config, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case "memory":
		return session.NewMemoryStore(), func() {}, nil

	case "redis":
		store, err := session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Session.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "postgres":
		store, err := session.NewPostgresStore(session.PostgresConfig{
			DSN:          cfg.Database.DSN(),
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			TTL:          cfg.Session.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		sweeper := session.NewSweeper(store, logger)
		if err := sweeper.Start(cfg.Session.SweepSchedule); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() {
			sweeper.Stop()
			store.Close()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
