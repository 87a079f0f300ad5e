package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	AES         AESConfig         `mapstructure:"aes"`
	Log         LogConfig         `mapstructure:"log"`
	PaymentLink PaymentLinkConfig `mapstructure:"payment_link"`
	Refund      RefundConfig      `mapstructure:"refund"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	SecretCache SecretCacheConfig `mapstructure:"secret_cache"`
	Chain       ChainConfig       `mapstructure:"chain"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"dbname"`
	SSLMode          string        `mapstructure:"sslmode"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ApplicationName  string        `mapstructure:"application_name"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`      // SET LOCAL lock_timeout per transaction
	StatementTimeout time.Duration `mapstructure:"statement_timeout"` // SET LOCAL statement_timeout per transaction
	TxTimeout        time.Duration `mapstructure:"tx_timeout"`        // context deadline for ledger operations
}

// DSN returns the PostgreSQL connection URL with credentials escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type PaymentLinkConfig struct {
	ShortCodeAttempts int    `mapstructure:"short_code_attempts"`
	PublicBaseURL     string `mapstructure:"public_base_url"`
}

type RefundConfig struct {
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

type WebhookConfig struct {
	Timeout          time.Duration   `mapstructure:"timeout"`
	MaxAttempts      int             `mapstructure:"max_attempts"`
	RetrySchedule    []time.Duration `mapstructure:"retry_schedule"`
	Jitter           float64         `mapstructure:"jitter"` // fraction of the base delay, 0..1
	BreakerThreshold int             `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration   `mapstructure:"breaker_cooldown"`
	PollInterval     time.Duration   `mapstructure:"poll_interval"`
	BatchSize        int             `mapstructure:"batch_size"`
	Workers          int             `mapstructure:"workers"`
	StaleAfter       time.Duration   `mapstructure:"stale_after"`
	AllowPrivateURLs bool            `mapstructure:"allow_private_urls"` // local development only
}

type SecretCacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

type ChainConfig struct {
	Confirmations map[string]int    `mapstructure:"confirmations"` // per-network overrides
	RPCURLs       map[string]string `mapstructure:"rpc_urls"`
	Timeout       time.Duration     `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

type MonitorConfig struct {
	Secret    string        `mapstructure:"secret"`
	ClockSkew time.Duration `mapstructure:"clock_skew"`
	NonceTTL  time.Duration `mapstructure:"nonce_ttl"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SPG_.
// Nested keys use underscore: SPG_DATABASE_HOST, SPG_WEBHOOK_TIMEOUT, etc.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "stablecoin_gateway")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.application_name", "stablecoin-gateway")
	v.SetDefault("database.lock_timeout", "5s")
	v.SetDefault("database.statement_timeout", "10s")
	v.SetDefault("database.tx_timeout", "10s")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "stablecoin-gateway")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("payment_link.short_code_attempts", 5)
	v.SetDefault("payment_link.public_base_url", "http://localhost:8080")
	v.SetDefault("refund.idempotency_ttl", "24h")
	v.SetDefault("webhook.timeout", "30s")
	v.SetDefault("webhook.max_attempts", 5)
	v.SetDefault("webhook.retry_schedule", []string{"60s", "5m", "15m", "1h", "2h"})
	v.SetDefault("webhook.jitter", 0.1)
	v.SetDefault("webhook.breaker_threshold", 5)
	v.SetDefault("webhook.breaker_cooldown", "60s")
	v.SetDefault("webhook.poll_interval", "5s")
	v.SetDefault("webhook.batch_size", 50)
	v.SetDefault("webhook.workers", 8)
	v.SetDefault("webhook.stale_after", "2m")
	v.SetDefault("webhook.allow_private_urls", false)
	v.SetDefault("secret_cache.ttl", "5m")
	v.SetDefault("secret_cache.max_entries", 10000)
	v.SetDefault("chain.timeout", "10s")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "gateway.events")
	v.SetDefault("kafka.client_id", "stablecoin-gateway")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", "stablecoin-gateway")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("monitor.clock_skew", "60s")
	v.SetDefault("monitor.nonce_ttl", "5m")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SPG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("SPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Webhook.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (w WebhookConfig) validate() error {
	if w.MaxAttempts < 1 {
		return fmt.Errorf("webhook.max_attempts must be at least 1, got %d", w.MaxAttempts)
	}
	if len(w.RetrySchedule) == 0 {
		return errors.New("webhook.retry_schedule must not be empty")
	}
	if w.Jitter < 0 || w.Jitter > 1 {
		return fmt.Errorf("webhook.jitter must be within [0, 1], got %v", w.Jitter)
	}
	return nil
}
