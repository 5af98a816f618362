package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homecare-data/common/database"
	"homecare-data/common/logger"
	"homecare-data/common/mqtt"
	rediscommon "homecare-data/common/redis"
	"homecare-data/internal/config"
	httpapi "homecare-data/internal/http"
	"homecare-data/internal/notify"
	"homecare-data/internal/repository"
	"homecare-data/internal/service"
	"homecare-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "homecare-data")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	health := httpapi.NewHealthHandler(log)

	rs, db, err := openRecordStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	if db != nil {
		health.AddCheck("database", httpapi.PingFunc(db.PingContext))
	}

	// Redis is optional: without it views are computed on every request and
	// the redis notifier is unavailable.
	var redisClient *redis.Client
	var kv store.KV
	if cfg.Redis.Addr != "" {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rediscommon.Ping(pingCtx, redisClient); err != nil {
			log.Warn("Redis not reachable, cache will retry on demand", zap.Error(err))
		}
		cancel()
		kv = store.NewRedisKV(redisClient)
		health.AddCheck("redis", httpapi.PingFunc(func(ctx context.Context) error {
			return rediscommon.Ping(ctx, redisClient)
		}))
	}
	cache := service.NewViewCache(kv, cfg.CacheTTL, log)

	notifier, mqttClient, err := openNotifier(cfg, redisClient, log)
	if err != nil {
		log.Fatal("Failed to set up notifier", zap.String("backend", cfg.Notify.Backend), zap.Error(err))
	}
	if mqttClient != nil {
		health.AddCheck("mqtt", httpapi.PingFunc(func(context.Context) error {
			if !mqttClient.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}))
	}

	persons := service.NewAssistedPersonService(rs, cache, log)
	operators := service.NewOperatorService(rs, service.OperatorServiceConfig{
		WindowDays:         cfg.Expiry.WindowDays,
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
	}, cache, log)
	alerts := service.NewAlertService(operators, notifier, log)
	diary := service.NewDiaryService(rs, cfg.MaxAttachmentBytes, cache, log)
	folders := service.NewHealthFolderService(rs, cfg.MaxAttachmentBytes, cache, log)

	metrics := httpapi.NewMetrics(log)
	router := httpapi.NewRouter(log)
	router.RegisterAssistedPersonRoutes(httpapi.NewAssistedPersonHandler(persons, log))
	router.RegisterOperatorRoutes(httpapi.NewOperatorHandler(operators, alerts, log))
	router.RegisterDiaryRoutes(httpapi.NewDiaryHandler(diary, log))
	router.RegisterHealthFolderRoutes(httpapi.NewHealthFolderHandler(folders, log))
	router.RegisterOpsRoutes(health, metrics)

	srv := service.NewServer(cfg.HTTP.Addr, metrics.Middleware(router), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Expiry.AlertInterval > 0 {
		go func() {
			if err := alerts.Run(ctx, cfg.Expiry.AlertInterval); err != nil {
				log.Error("Expiry alerts stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = rediscommon.Close(redisClient)
	}
	if db != nil {
		_ = database.Close(db)
	}
}

// openRecordStore returns the configured backend; db is non-nil only for
// the postgres backend.
func openRecordStore(cfg *config.Config, log *zap.Logger) (repository.RecordStore, *sql.DB, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		log.Warn("Using in-memory record store, data is lost on restart")
		return repository.NewMemoryStore(), nil, nil
	case config.StorePostgres:
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		ps := repository.NewPostgresStore(db, log)
		if cfg.Store.EnsureSchema {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := ps.EnsureSchema(ctx); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("ensure schema: %w", err)
			}
		}
		log.Info("Using PostgreSQL record store", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))
		return ps, db, nil
	case config.StorePostgREST:
		if cfg.Store.PostgRESTURL == "" {
			return nil, nil, errors.New("POSTGREST_URL is required")
		}
		log.Info("Using PostgREST record store", zap.String("url", cfg.Store.PostgRESTURL))
		return repository.NewPostgRESTStore(cfg.Store.PostgRESTURL, cfg.Store.PostgRESTAPIKey, log), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
}

func openNotifier(cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (notify.Notifier, *mqtt.Client, error) {
	switch cfg.Notify.Backend {
	case config.NotifyLog:
		return notify.NewLogNotifier(log), nil, nil
	case config.NotifyRedis:
		if redisClient == nil {
			return nil, nil, errors.New("redis notifier requires REDIS_ADDR")
		}
		return notify.NewStreamNotifier(redisClient, cfg.Notify.Stream, cfg.Notify.StreamMaxLen), nil, nil
	case config.NotifyMQTT:
		client, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			return nil, nil, err
		}
		return notify.NewMQTTNotifier(client, cfg.MQTT.Topic, cfg.MQTT.QoS), client, nil
	}
	return nil, nil, fmt.Errorf("unsupported notify backend: %s", cfg.Notify.Backend)
}
