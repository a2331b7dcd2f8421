package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Token settings read by the auth middleware and token helpers.
var (
	SecretKey       []byte
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type Config struct {
	Port            string        `env:"PORT,default=8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	JWTSecret       string        `env:"JWT_SECRET_KEY,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=168h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	// Seeded on start-up when both are set and the user does not exist yet.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE,default=10"`

	ImageKit ImageKitConfig
}

type ImageKitConfig struct {
	UploadURL  string        `env:"IMAGEKIT_UPLOAD_URL,default=https://upload.imagekit.io/api/v1/files/upload"`
	PrivateKey string        `env:"IMAGEKIT_PRIVATE_KEY"`
	Timeout    time.Duration `env:"IMAGEKIT_TIMEOUT,default=30s"`
}

// Load reads an optional .env file, decodes the environment and publishes
// the token settings.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if len(cfg.JWTSecret) < 16 {
		return nil, errors.New("JWT_SECRET_KEY must be at least 16 characters")
	}
	if cfg.LoginRatePerMinute <= 0 {
		return nil, errors.New("LOGIN_RATE_PER_MINUTE must be positive")
	}

	SecretKey = []byte(cfg.JWTSecret)
	AccessTokenTTL = cfg.AccessTokenTTL
	RefreshTokenTTL = cfg.RefreshTokenTTL

	return &cfg, nil
}
