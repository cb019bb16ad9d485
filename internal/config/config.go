package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string        `env:"HTTP_PORT" envDefault:"5000"`
	StoreDriver   string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	RunMigrations bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	TranslatorURL string        `env:"TRANSLATOR_URL"`
	MockDelay     time.Duration `env:"TRANSLATOR_MOCK_DELAY" envDefault:"500ms"`
	SMTPHost      string        `env:"SMTP_HOST"`
	SMTPPort      int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser      string        `env:"SMTP_USER"`
	SMTPPass      string        `env:"SMTP_PASS"`
	SMTPFrom      string        `env:"SMTP_FROM"`
	SMTPFromName  string        `env:"SMTP_FROM_NAME"`
	SMTPUseTLS    bool          `env:"SMTP_USE_TLS" envDefault:"false"`
	ResetURL      string        `env:"RESET_URL"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174"`
	Auth          AuthConfig
}

// AuthConfig agrupa los parámetros de identidad. Se construye una vez al
// arrancar y se pasa por valor a los servicios.
type AuthConfig struct {
	SigningKey string        `env:"JWT_SECRET"`
	HashCost   int           `env:"BCRYPT_COST" envDefault:"12"`
	TokenTTL   time.Duration `env:"JWT_TTL" envDefault:"720h"`
	ResetTTL   time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
}

var (
	ErrMissingSigningKey = errors.New("JWT_SECRET is required")
	ErrMissingDatabase   = errors.New("DATABASE_URL is required for the postgres store")
)

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return ErrMissingDatabase
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return c.Auth.Validate()
}

func (a AuthConfig) Validate() error {
	if strings.TrimSpace(a.SigningKey) == "" {
		return ErrMissingSigningKey
	}
	if a.HashCost < bcrypt.MinCost || a.HashCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, a.HashCost)
	}
	if a.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if a.ResetTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}
	return nil
}
