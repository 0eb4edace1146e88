package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the authorization service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NatsURL           string
	JWTSecret         string
	DirectoryCacheTTL time.Duration
	AuditSubject      string
	AdminRateLimit    int
	AdminRateWindow   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an
// optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LECTORIA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Lectoria Authz API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("directory.cache_ttl", "2m")
	v.SetDefault("audit.subject", "lectoria.audit.recorded")
	v.SetDefault("admin.rate_limit", 30)
	v.SetDefault("admin.rate_window", "1m")

	ttlString := v.GetString("directory.cache_ttl")
	if ttlString == "" {
		ttlString = "2m"
	}
	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid directory cache ttl: %w", err)
	}

	windowString := v.GetString("admin.rate_window")
	if windowString == "" {
		windowString = "1m"
	}
	window, err := time.ParseDuration(windowString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid admin rate window: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NatsURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		DirectoryCacheTTL: ttl,
		AuditSubject:      v.GetString("audit.subject"),
		AdminRateLimit:    v.GetInt("admin.rate_limit"),
		AdminRateWindow:   window,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("LECTORIA_DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("LECTORIA_JWT_SECRET is required")
	}

	return cfg, nil
}
