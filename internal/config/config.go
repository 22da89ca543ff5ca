package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"crm-service/internal/pkg/jwt"
	"crm-service/internal/service/xilnex"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	// Server
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":5000"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	Postgres Postgres
	Redis    Redis
	JWT      JWT
	Xilnex   Xilnex
	Seed     Seed
}

type Postgres struct {
	DSN      string `env:"POSTGRES_DSN,required"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

// Redis is optional; an empty address keeps the creation lock in-process.
type Redis struct {
	Addr string `env:"REDIS_ADDR"`
	Pass string `env:"REDIS_PASS"`
	DB   int    `env:"REDIS_DB" envDefault:"0"`
}

type JWT struct {
	Secret string        `env:"JWT_SECRET,required"`
	Expire time.Duration `env:"JWT_EXPIRE" envDefault:"720h"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"crm-service"`
}

type Xilnex struct {
	Enabled       bool          `env:"XILNEX_ENABLED" envDefault:"false"`
	APIURL        string        `env:"XILNEX_API_URL" envDefault:"https://api.xilnex.com"`
	AppID         string        `env:"XILNEX_APPID"`
	AppToken      string        `env:"XILNEX_APPTOKEN"`
	Auth          string        `env:"XILNEX_AUTH"`
	Timeout       time.Duration `env:"XILNEX_TIMEOUT" envDefault:"30s"`
	RetryAttempts int           `env:"XILNEX_RETRY_ATTEMPTS" envDefault:"0"`
	BatchSize     int           `env:"XILNEX_BATCH_SIZE" envDefault:"5"`
	BatchPause    time.Duration `env:"XILNEX_BATCH_PAUSE" envDefault:"1s"`
}

// Seed is only read by cmd/seed.
type Seed struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	AdminName     string `env:"SEED_ADMIN_NAME" envDefault:"Administrator"`
}

// Load reads envPath if it exists, then parses the environment into AppConfig.
func Load(envPath string) (AppConfig, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, err
	}

	return env.ParseAs[AppConfig]()
}

func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func (c AppConfig) JWTConfig() jwt.Config {
	return jwt.Config{
		Secret: c.JWT.Secret,
		Issuer: c.JWT.Issuer,
		TTL:    c.JWT.Expire,
	}
}

func (c AppConfig) XilnexConfig() xilnex.Config {
	return xilnex.Config{
		Enabled:       c.Xilnex.Enabled,
		BaseURL:       c.Xilnex.APIURL,
		AppID:         c.Xilnex.AppID,
		AppToken:      c.Xilnex.AppToken,
		Auth:          c.Xilnex.Auth,
		Timeout:       c.Xilnex.Timeout,
		RetryAttempts: c.Xilnex.RetryAttempts,
		BatchSize:     c.Xilnex.BatchSize,
		BatchPause:    c.Xilnex.BatchPause,
	}
}
