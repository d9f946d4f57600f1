package kafka_config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all Kafka configuration
// Config holds broker tuning. Topics and the on/off switch live in the
// service configuration.
type Config struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092" env-separator:","`

	// Producer configuration
	ProducerMaxAttempts  int           `yaml:"producer_max_attempts" env:"KAFKA_PRODUCER_MAX_ATTEMPTS" env-default:"3"`
	ProducerBatchTimeout time.Duration `yaml:"producer_batch_timeout" env:"KAFKA_PRODUCER_BATCH_TIMEOUT" env-default:"10ms"`
	ProducerRequireAcks  int           `yaml:"producer_require_acks" env:"KAFKA_PRODUCER_REQUIRE_ACKS" env-default:"-1"` // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string        `yaml:"producer_compression" env:"KAFKA_PRODUCER_COMPRESSION" env-default:"snappy"`
	ProducerAsync        bool          `yaml:"producer_async" env:"KAFKA_PRODUCER_ASYNC" env-default:"false"`

	// Consumer configuration
	ConsumerGroup             string        `yaml:"consumer_group" env:"KAFKA_CONSUMER_GROUP" env-default:"innkeep-notifier"`
	ConsumerStartOffset       int64         `yaml:"consumer_start_offset" env:"KAFKA_CONSUMER_START_OFFSET" env-default:"-1"` // -1 = newest, -2 = oldest
	ConsumerMinBytes          int           `yaml:"consumer_min_bytes" env:"KAFKA_CONSUMER_MIN_BYTES" env-default:"1"`
	ConsumerMaxBytes          int           `yaml:"consumer_max_bytes" env:"KAFKA_CONSUMER_MAX_BYTES" env-default:"10485760"`
	ConsumerMaxWait           time.Duration `yaml:"consumer_max_wait" env:"KAFKA_CONSUMER_MAX_WAIT" env-default:"500ms"`
	ConsumerCommitInterval    time.Duration `yaml:"consumer_commit_interval" env:"KAFKA_CONSUMER_COMMIT_INTERVAL" env-default:"1s"`
	ConsumerHeartbeatInterval time.Duration `yaml:"consumer_heartbeat_interval" env:"KAFKA_CONSUMER_HEARTBEAT_INTERVAL" env-default:"3s"`
	ConsumerSessionTimeout    time.Duration `yaml:"consumer_session_timeout" env:"KAFKA_CONSUMER_SESSION_TIMEOUT" env-default:"10s"`
	ConsumerRebalanceTimeout  time.Duration `yaml:"consumer_rebalance_timeout" env:"KAFKA_CONSUMER_REBALANCE_TIMEOUT" env-default:"60s"`
	ConsumerMaxRetries        int           `yaml:"consumer_max_retries" env:"KAFKA_CONSUMER_MAX_RETRIES" env-default:"3"`
	ConsumerRetryBackoff      time.Duration `yaml:"consumer_retry_backoff" env:"KAFKA_CONSUMER_RETRY_BACKOFF" env-default:"200ms"`

	EnableMiddleware bool `yaml:"enable_middleware" env:"KAFKA_ENABLE_MIDDLEWARE" env-default:"true"`
}

// Load reads the Kafka configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read kafka environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}

	if cfg.ProducerMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}

	if cfg.ProducerBatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}

	validCompressions := map[string]bool{
		"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true,
	}
	if !validCompressions[cfg.ProducerCompression] {
		errors = append(errors, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.ProducerCompression))
	}

	validAcks := map[int]bool{-1: true, 0: true, 1: true}
	if !validAcks[cfg.ProducerRequireAcks] {
		errors = append(errors, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerGroup == "" {
		errors = append(errors, "ConsumerGroup cannot be empty")
	}

	if cfg.ConsumerStartOffset != -1 && cfg.ConsumerStartOffset != -2 && cfg.ConsumerStartOffset < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerStartOffset must be -1 (newest), -2 (oldest), or >= 0, got: %d", cfg.ConsumerStartOffset))
	}

	if cfg.ConsumerMinBytes <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMinBytes must be positive, got: %d", cfg.ConsumerMinBytes))
	}

	if cfg.ConsumerMaxBytes < cfg.ConsumerMinBytes {
		errors = append(errors, fmt.Sprintf("ConsumerMaxBytes (%d) must be >= ConsumerMinBytes (%d)", cfg.ConsumerMaxBytes, cfg.ConsumerMinBytes))
	}

	if cfg.ConsumerMaxWait <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMaxWait must be positive, got: %s", cfg.ConsumerMaxWait))
	}

	if cfg.ConsumerCommitInterval <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerCommitInterval must be positive, got: %s", cfg.ConsumerCommitInterval))
	}

	if cfg.ConsumerHeartbeatInterval <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerHeartbeatInterval must be positive, got: %s", cfg.ConsumerHeartbeatInterval))
	}

	if cfg.ConsumerSessionTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerSessionTimeout must be positive, got: %s", cfg.ConsumerSessionTimeout))
	}

	if cfg.ConsumerRebalanceTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumerRebalanceTimeout must be positive, got: %s", cfg.ConsumerRebalanceTimeout))
	}

	if cfg.ConsumerMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}

	if cfg.ConsumerRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerRetryBackoff cannot be negative, got: %s", cfg.ConsumerRetryBackoff))
	}

	if len(errors) > 0 {
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, args ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_batch_timeout", cfg.ProducerBatchTimeout,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"producer_async", cfg.ProducerAsync,
		"consumer_group", cfg.ConsumerGroup,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_wait", cfg.ConsumerMaxWait,
		"consumer_commit_interval", cfg.ConsumerCommitInterval,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"enable_middleware", cfg.EnableMiddleware,
	)
}
