package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Notify  NotifyConfig
	Pricing PricingConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=pnice_portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// NotifyConfig controls the notification dispatcher and its per-status
// delivery-guarantee policies.
type NotifyConfig struct {
	// BaseURL of the external notification service; the dispatcher posts to
	// {BaseURL}/send-email.
	BaseURL string `env:"NOTIFY_BASE_URL, default=http://localhost:9090"`
	// Workers sizes the best-effort fan-out pool.
	Workers int `env:"NOTIFY_WORKERS, default=4"`
	// BlockingStatuses lists wire status strings whose transitions must not
	// commit unless the customer was notified. Everything else is
	// best-effort. Default: the confirmation status.
	BlockingStatuses []string `env:"NOTIFY_BLOCKING_STATUSES, default=Recu📦"`
	// BeforeCommit sends blocking notifications before the row is written,
	// so no committed status change exists the customer never heard about.
	BeforeCommit bool `env:"NOTIFY_BEFORE_COMMIT, default=true"`
}

// PricingConfig carries the rate tables. Empty maps select the compiled-in
// catalog, so a bare environment still prices correctly.
type PricingConfig struct {
	// ServiceFee is the flat per-shipment handling fee in dollars.
	ServiceFee float64 `env:"PRICING_SERVICE_FEE, default=10"`
	// FixedPrices maps category names to flat prices, e.g.
	// "iphone 14:70,macbook pro:150".
	FixedPrices map[string]float64 `env:"PRICING_FIXED"`
	// PerPoundRates maps destinations to dollar-per-pound rates, e.g.
	// "cap-haitien:4.5,port-au-prince:5".
	PerPoundRates map[string]float64 `env:"PRICING_PER_POUND"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
