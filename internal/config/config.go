package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort string

	DBDriver    string // postgres or sqlite
	DatabaseDSN string

	JWTSecret  string
	JWTTTL     time.Duration
	RefreshTTL time.Duration

	// RabbitMQURL is optional; empty disables order event publication.
	RabbitMQURL string

	// StripeSecretKey is optional; empty disables payment intents.
	StripeSecretKey string
	PaymentCurrency string

	OTLPEndpoint string
	OTLPInsecure bool
	ServiceName  string

	LogLevel string
}

// Load reads the optional .env files, then the environment, then falls back to defaults.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// Missing .env files are normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		DBDriver:        strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		RefreshTTL:      v.GetDuration("REFRESH_TOKEN_TTL"),
		RabbitMQURL:     strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		StripeSecretKey: strings.TrimSpace(v.GetString("STRIPE_SECRET_KEY")),
		PaymentCurrency: strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
		OTLPEndpoint:    strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		ServiceName:     v.GetString("OTEL_SERVICE_NAME"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("OTEL_SERVICE_NAME", "storefront")
	v.SetDefault("LOG_LEVEL", "info")
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_TTL must be positive, got %s", c.RefreshTTL))
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
