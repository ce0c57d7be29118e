package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Cart store backends accepted by CART_STORE.
const (
	CartStoreMemory   = "memory"
	CartStorePostgres = "postgres"
	CartStoreRedis    = "redis"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	ShutdownTimeout time.Duration
	CartStore       string
	CartKey         string
	RedisAddr       string
	NATSURL         string
	NATSSubject     string
	UploadDir       string
	CORSOrigins     []string
}

// FromEnv builds Config with defaults, overridden by environment variables.
// An empty DB_DSN runs the catalog in memory.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    os.Getenv("DB_DSN"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CartStore:       strings.ToLower(envOrDefault("CART_STORE", CartStoreMemory)),
		CartKey:         envOrDefault("CART_KEY", "cart"),
		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		NATSURL:         os.Getenv("NATS_URL"),
		NATSSubject:     envOrDefault("NATS_SUBJECT", "minishop.cart.notifications"),
		UploadDir:       envOrDefault("UPLOAD_DIR", "public/uploads"),
		CORSOrigins:     envList("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
