package internal

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config carries the process configuration. Values come from the
// environment, with a .env file loaded first for local development.
type Config struct {
	Env         string
	LogLevel    string
	Port        uint16
	DatabaseURL string

	// Pricing policy applied to carts and orders.
	Currency          string
	ShippingFlatCents int64
	TaxRateBps        int64

	Stripe    StripeConfig
	NATS      NATSConfig
	Reconcile ReconcileConfig

	MetricsNamespace string
}

// StripeConfig holds the card gateway credentials.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// NATSConfig holds the event broker settings. An empty URL disables
// publishing.
type NATSConfig struct {
	URL string
}

// ReconcileConfig tunes the stale payment reconciler.
type ReconcileConfig struct {
	IntervalSeconds   int
	StaleAfterSeconds int
}

// NewConfig loads configuration from the environment. A missing .env file
// is not an error; deployments set real environment variables.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 3000)
	v.SetDefault("CURRENCY", "usd")
	v.SetDefault("SHIPPING_FLAT_CENTS", 500)
	v.SetDefault("TAX_RATE_BPS", 0)
	v.SetDefault("METRICS_NAMESPACE", "verdandi")
	v.SetDefault("RECONCILE_INTERVAL_SECONDS", 60)
	v.SetDefault("RECONCILE_STALE_AFTER_SECONDS", 900)

	cfg := &Config{
		Env:               v.GetString("ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		Port:              uint16(v.GetUint32("PORT")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		Currency:          v.GetString("CURRENCY"),
		ShippingFlatCents: v.GetInt64("SHIPPING_FLAT_CENTS"),
		TaxRateBps:        v.GetInt64("TAX_RATE_BPS"),
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		NATS: NATSConfig{
			URL: v.GetString("NATS_URL"),
		},
		Reconcile: ReconcileConfig{
			IntervalSeconds:   v.GetInt("RECONCILE_INTERVAL_SECONDS"),
			StaleAfterSeconds: v.GetInt("RECONCILE_STALE_AFTER_SECONDS"),
		},
		MetricsNamespace: v.GetString("METRICS_NAMESPACE"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TaxRateBps < 0 || cfg.TaxRateBps > 10000 {
		return nil, fmt.Errorf("TAX_RATE_BPS must be between 0 and 10000")
	}
	return cfg, nil
}
