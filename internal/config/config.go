package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds process configuration read from the environment.
type Config struct {
	Port     string `env:"PORT" envDefault:"5000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MongoURI  string        `env:"MONGO_URI,required"`
	DBName    string        `env:"DB_NAME" envDefault:"storefront"`
	DBTimeout time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"3000000s"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	PayPalClientID string `env:"PAYPAL_CLIENT_ID"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	StaticDir      string `env:"STATIC_DIR"`

	PageSize              int             `env:"PAGE_SIZE" envDefault:"10"`
	ShippingFlatRate      decimal.Decimal `env:"SHIPPING_FLAT_RATE" envDefault:"4.99"`
	FreeShippingThreshold decimal.Decimal `env:"FREE_SHIPPING_THRESHOLD" envDefault:"50"`
	TaxRate               decimal.Decimal `env:"TAX_RATE" envDefault:"0"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Production reports whether the process runs with production error rendering.
func (c *Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), EnvProduction)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.AppEnv)) {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid APP_ENV %q", c.AppEnv)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be blank")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1")
	}
	if c.DBTimeout <= 0 {
		return fmt.Errorf("DB_TIMEOUT must be positive")
	}
	if c.ShippingFlatRate.IsNegative() || c.FreeShippingThreshold.IsNegative() || c.TaxRate.IsNegative() {
		return fmt.Errorf("pricing settings must not be negative")
	}
	return nil
}
