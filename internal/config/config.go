package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "homecare-data/common/config"
)

// Record store backends.
const (
	StoreMemory    = "memory"
	StorePostgres  = "postgres"
	StorePostgREST = "postgrest"
)

// Notification backends.
const (
	NotifyLog   = "log"
	NotifyRedis = "redis"
	NotifyMQTT  = "mqtt"
)

// Config homecare-data (HTTP API) configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	Store struct {
		Backend      string
		EnsureSchema bool
		// PostgREST endpoint (Supabase project URL) and its API key.
		PostgRESTURL    string
		PostgRESTAPIKey string
	}
	Database commoncfg.DatabaseConfig
	Redis    commoncfg.RedisConfig
	CacheTTL time.Duration
	Notify   struct {
		Backend      string
		Stream       string
		StreamMaxLen int64
	}
	MQTT   commoncfg.MQTTConfig
	Expiry struct {
		WindowDays int
		// AlertInterval period of the expiry notification loop; 0 disables it.
		AlertInterval time.Duration
	}
	MaxAttachmentBytes int64
	Log                struct {
		Level  string
		Format string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Store.Backend = getEnv("STORE_BACKEND", StoreMemory)
	cfg.Store.EnsureSchema = getEnv("DB_ENSURE_SCHEMA", "true") == "true"
	cfg.Store.PostgRESTURL = getEnv("POSTGREST_URL", "")
	cfg.Store.PostgRESTAPIKey = getEnv("POSTGREST_API_KEY", "")

	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "homecare",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	// empty address disables the cache
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.CacheTTL = time.Duration(parseInt(getEnv("CACHE_TTL_SECONDS", "60"), 60)) * time.Second

	cfg.Notify.Backend = getEnv("NOTIFY_BACKEND", NotifyLog)
	cfg.Notify.Stream = getEnv("NOTIFY_STREAM", "homecare:alerts")
	cfg.Notify.StreamMaxLen = int64(parseInt(getEnv("NOTIFY_STREAM_MAXLEN", "10000"), 10000))

	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "homecare-data",
		Topic:    "homecare/alerts",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Expiry.WindowDays = parseInt(getEnv("EXPIRY_WINDOW_DAYS", "30"), 30)
	cfg.Expiry.AlertInterval = time.Duration(parseInt(getEnv("ALERT_INTERVAL_MINUTES", "0"), 0)) * time.Minute
	cfg.MaxAttachmentBytes = int64(parseInt(getEnv("MAX_ATTACHMENT_MB", "10"), 10)) * 1024 * 1024

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
