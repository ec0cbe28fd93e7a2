package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	defaultSnapshotRetain = 20
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	StoreDriver   string
	DatabaseURL   string
	MemoryFixture string
	ServerPort    int
	LogLevel      slog.Level

	JWTSecretKey          string
	OrganizerEmail        string
	OrganizerPasswordHash string

	CORSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// SnapshotRetain is how many standings snapshots are kept per competition; 0 keeps all.
	SnapshotRetain int
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.Getenv)
}

// FromLookup builds the configuration from getenv, which returns "" for unset keys.
func FromLookup(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		StoreDriver:           strings.ToLower(strings.TrimSpace(getenv("STORE_DRIVER"))),
		DatabaseURL:           getenv("DATABASE_URL"),
		MemoryFixture:         getenv("MEMORY_FIXTURE"),
		JWTSecretKey:          getenv("JWT_SECRET_KEY"),
		OrganizerEmail:        getenv("ORGANIZER_EMAIL"),
		OrganizerPasswordHash: getenv("ORGANIZER_PASSWORD_HASH"),
		R2AccountID:           getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:         getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:     getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:          getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:       getenv("R2_PUBLIC_BASE_URL"),
	}

	switch cfg.StoreDriver {
	case "":
		cfg.StoreDriver = StoreDriverPostgres
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, cfg.StoreDriver)
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if cfg.OrganizerEmail == "" || cfg.OrganizerPasswordHash == "" {
		return nil, fmt.Errorf("ORGANIZER_EMAIL and ORGANIZER_PASSWORD_HASH environment variables must be set")
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if raw := getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	cfg.SnapshotRetain = defaultSnapshotRetain
	if raw := getenv("SNAPSHOT_RETAIN"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("SNAPSHOT_RETAIN must be a non-negative integer, got %q", raw)
		}
		cfg.SnapshotRetain = n
	}

	cfg.CORSAllowedOrigins = splitList(getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	r2 := []string{cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2BucketName, cfg.R2PublicBaseURL}
	set := 0
	for _, v := range r2 {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(r2) {
		return nil, fmt.Errorf("R2 snapshot publishing needs all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL")
	}

	return cfg, nil
}

// SnapshotsEnabled reports whether standings snapshots are uploaded to R2.
func (c *Config) SnapshotsEnabled() bool {
	return c.R2AccountID != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
