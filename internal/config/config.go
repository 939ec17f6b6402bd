package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the knobs for every binary in the module. Each service
// reads the subset it needs; unset values fall back to local-dev defaults.
type Config struct {
	ProductServicePort int `envconfig:"PRODUCT_SERVICE_PORT" default:"8081"`
	OrderServicePort   int `envconfig:"ORDER_SERVICE_PORT" default:"8082"`
	GatewayPort        int `envconfig:"GATEWAY_PORT" default:"8080"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"ecommerce"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"ecommerce123"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"ecommerce"`

	RedisHost string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort int           `envconfig:"REDIS_PORT" default:"6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// DedupTTL bounds how long a consumer's processed-claim survives.
	// It must outlive any plausible redelivery, so it is much longer
	// than the read-cache TTL.
	DedupTTL time.Duration `envconfig:"DEDUP_TTL" default:"72h"`

	RabbitHost     string `envconfig:"RABBIT_HOST" default:"localhost"`
	RabbitPort     int    `envconfig:"RABBIT_PORT" default:"5672"`
	RabbitUser     string `envconfig:"RABBIT_USER" default:"guest"`
	RabbitPassword string `envconfig:"RABBIT_PASSWORD" default:"guest"`

	ConsulHost string `envconfig:"CONSUL_HOST" default:"localhost"`
	ConsulPort int    `envconfig:"CONSUL_PORT" default:"8500"`

	EventExchange string `envconfig:"EVENT_EXCHANGE" default:"ecommerce.events"`

	// EventRetention bounds how long audit rows live before the
	// sweeper removes them.
	EventRetention     time.Duration `envconfig:"EVENT_RETENTION" default:"5m"`
	EventSweepInterval time.Duration `envconfig:"EVENT_SWEEP_INTERVAL" default:"1m"`

	EmailMaxRetries int `envconfig:"EMAIL_MAX_RETRIES" default:"3"`
	EmailPrefetch   int `envconfig:"EMAIL_PREFETCH" default:"10"`

	// ListLimit caps unfiltered list reads; full scans do not survive
	// past toy record counts.
	ListLimit int `envconfig:"LIST_LIMIT" default:"100"`

	// DefaultActorEmail is attributed to mutations whose request
	// carries no X-User-Email header.
	DefaultActorEmail string `envconfig:"DEFAULT_ACTOR_EMAIL" default:"anonymous@ecommerce.local"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
