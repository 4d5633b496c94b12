package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petfy/internal/adapters/events/kafka"
	"petfy/internal/adapters/storage/memory"
	pg "petfy/internal/adapters/storage/postgres"
	rds "petfy/internal/adapters/storage/redis"
	"petfy/internal/platform/config"
	"petfy/internal/platform/logger"
	"petfy/internal/ports/events"
	"petfy/internal/ports/kv"
	"petfy/internal/router"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"err": err})
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var pub events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = p.Close() }()
		pub = p
		log.Info("publishing events to kafka", map[string]any{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic})
	}

	srv, err := router.NewRouter(router.Options{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Publisher: pub,
	})
	if err != nil {
		return err
	}

	if err := srv.Scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// limpieza periódica: limiters por IP y sesiones ociosas
	go func() {
		t := time.NewTicker(cfg.CleanupInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiters, sessions := srv.Cleanup()
				log.Debug("cleanup", map[string]any{"limiters": limiters, "sessions": sessions})
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":       cfg.HTTPAddr,
			"store":      string(cfg.StoreDriver),
			"auth_api":   cfg.AuthAPIBaseURL,
			"onboarding": string(cfg.WalkerOnboarding),
		})
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", map[string]any{"err": err})
	}
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config) (kv.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		s, err := rds.Open(ctx, rds.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.StorePostgres:
		db, err := pg.Open(ctx, cfg.DBDSN, pg.PoolOptions{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			PingTimeout:     cfg.DBPingTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		s := pg.NewKVStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, func() { _ = db.Close() }, nil

	default:
		return memory.NewStore(), func() {}, nil
	}
}
