package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting for the service.
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL,required"`
	ListenAddr     string `env:"LISTEN_ADDR" envDefault:":5300"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	TokenSecret string        `env:"TOKEN_SECRET,required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	PushServiceURL   string `env:"PUSH_SERVICE_URL"`
	PushServiceToken string `env:"PUSH_SERVICE_TOKEN"`

	SettlementInterval time.Duration `env:"SETTLEMENT_INTERVAL" envDefault:"1m"`

	// Object storage for quest proof photos; uploads are disabled when the
	// bucket is unset.
	R2AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL        string `env:"CDN_BASE_URL"`
}

// Load reads .env when present, then parses the environment into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
