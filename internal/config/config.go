package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/deligo/search-service/pkg/config"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8001"`

	// CORS
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000" envSeparator:","`

	// Meilisearch
	MeilisearchURL   string `env:"MEILISEARCH_URL" envDefault:"http://localhost:7700"`
	MeilisearchKey   string `env:"MEILISEARCH_MASTER_KEY" envDefault:""`
	MeilisearchIndex string `env:"MEILISEARCH_INDEX" envDefault:"products"`

	// Search engine selection (meilisearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"meilisearch"`

	// MongoDB product catalog
	MongoURI    string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDBName string `env:"MONGODB_DB_NAME" envDefault:"deligo"`

	// Document store selection (mongo or memory)
	DocumentStore string `env:"DOCUMENT_STORE" envDefault:"mongo"`

	// Indexing
	IndexBatchSize   int           `env:"INDEX_BATCH_SIZE" envDefault:"100"`
	AutoSyncEnabled  bool          `env:"AUTO_SYNC_ENABLED" envDefault:"true"`
	AutoSyncInterval time.Duration `env:"AUTO_SYNC_INTERVAL" envDefault:"5m"`
	SyncRecoveryWait time.Duration `env:"SYNC_RECOVERY_WAIT" envDefault:"1m"`
	SyncLookback     time.Duration `env:"SYNC_LOOKBACK" envDefault:"1h"`

	// Analytics
	AnalyticsEnabled   bool `env:"SEARCH_ANALYTICS_ENABLED" envDefault:"true"`
	AnalyticsMaxEvents int  `env:"SEARCH_ANALYTICS_MAX_EVENTS" envDefault:"10000"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SearchEngine != "meilisearch" && c.SearchEngine != "memory" {
		return fmt.Errorf("invalid search engine: %q", c.SearchEngine)
	}
	if c.DocumentStore != "mongo" && c.DocumentStore != "memory" {
		return fmt.Errorf("invalid document store: %q", c.DocumentStore)
	}
	if c.IndexBatchSize < 1 {
		return fmt.Errorf("invalid index batch size: %d", c.IndexBatchSize)
	}
	if c.AnalyticsMaxEvents < 1 {
		return fmt.Errorf("invalid analytics max events: %d", c.AnalyticsMaxEvents)
	}
	return nil
}
