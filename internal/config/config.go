package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig     `envconfig:"SERVER"`
	CatalogAPI CatalogAPIConfig `envconfig:"CATALOG_API"`
	Cache      CacheConfig      `envconfig:"CACHE"`
	Log        LogConfig        `envconfig:"LOG"`
	Display    DisplayConfig    `envconfig:"DISPLAY"`
}

type ServerConfig struct {
	Port         int           `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

// CatalogAPIConfig points at the host serving GET /api/services. BaseURL is
// used as an opaque prefix.
type CatalogAPIConfig struct {
	BaseURL     string        `envconfig:"BASE_URL" default:"http://localhost:5000" validate:"required"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"10s" validate:"min=0"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"2" validate:"min=0,max=10"`
	RefreshRate time.Duration `envconfig:"REFRESH_RATE" default:"5m" validate:"min=0"`
}

type CacheConfig struct {
	Backend       string        `envconfig:"BACKEND" default:"memory" validate:"oneof=memory redis"`
	TTL           time.Duration `envconfig:"TTL" default:"10m"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required_if=Backend redis"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0" validate:"min=0"`
	RedisPrefix   string        `envconfig:"REDIS_PREFIX" default:"exdollarium:"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

type DisplayConfig struct {
	Locale string `envconfig:"LOCALE" default:"en"`
}

// LoadConfig reads an optional .env file (or the given files) and then the
// process environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	// Missing .env files are fine; the environment alone is enough.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
