package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	Login     LoginSettings     `mapstructure:"login"`
	TOTP      TOTPSettings      `mapstructure:"totp"`
	Password  PasswordSettings  `mapstructure:"password"`
	Calendar  CalendarSettings  `mapstructure:"calendar"`
	Whitelist WhitelistSettings `mapstructure:"whitelist"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Argon2    Argon2Settings    `mapstructure:"argon2"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	DB                 int    `mapstructure:"db"`
	Password           string `mapstructure:"password"`
	TLSEnabled         bool   `mapstructure:"tls_enabled"`
	PendingLoginPrefix string `mapstructure:"pending_login_prefix"`
}

// KafkaSettings configures the Kafka producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// JWTSettings configures bearer token signing. The secret is process-wide
// configuration, never request input.
type JWTSettings struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LoginSettings bounds the lifetime of an in-flight login sequence.
type LoginSettings struct {
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
}

// TOTPSettings labels the provisioning URI for authenticator apps.
type TOTPSettings struct {
	Issuer string `mapstructure:"issuer"`
}

// PasswordSettings tunes the registration password policy.
type PasswordSettings struct {
	MinLength int `mapstructure:"min_length"`
	MinScore  int `mapstructure:"min_score"`
}

// CalendarSettings configures the external calendar notification call.
type CalendarSettings struct {
	WebhookURL    string        `mapstructure:"webhook_url"`
	EventLead     time.Duration `mapstructure:"event_lead"`
	EventDuration time.Duration `mapstructure:"event_duration"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// WhitelistSettings toggles the client IP whitelist middleware.
type WhitelistSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// RateLimitSettings configures rate limiting windows and max attempts per endpoint
type RateLimitSettings struct {
	WindowDuration      time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts    int           `mapstructure:"login_max_attempts"`
	RegisterMaxAttempts int           `mapstructure:"register_max_attempts"`
}

// Argon2Settings configures Argon2id password hashing parameters
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
	Enabled      bool    `mapstructure:"enabled"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("FEINT")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.pending_login_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"jwt.secret",
		"jwt.access_token_ttl",
		"login.pending_ttl",
		"totp.issuer",
		"password.min_length",
		"password.min_score",
		"calendar.webhook_url",
		"calendar.event_lead",
		"calendar.event_duration",
		"calendar.timeout",
		"whitelist.enabled",
		"rate_limit.window_duration",
		"rate_limit.login_max_attempts",
		"rate_limit.register_max_attempts",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"telemetry.enabled",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required (FEINT_JWT_SECRET)")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "feint")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "feint")
	v.SetDefault("postgres.password", "feint_password")
	v.SetDefault("postgres.database", "feint")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.pending_login_prefix", "feint:pending-login")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "feint")
	v.SetDefault("kafka.async", true)

	v.SetDefault("jwt.access_token_ttl", "15m")

	v.SetDefault("login.pending_ttl", "5m")

	v.SetDefault("totp.issuer", "An Embedded System Web App")

	v.SetDefault("password.min_length", 1)
	v.SetDefault("password.min_score", 0)

	v.SetDefault("calendar.webhook_url", "")
	v.SetDefault("calendar.event_lead", "10m")
	v.SetDefault("calendar.event_duration", "7m")
	v.SetDefault("calendar.timeout", "10s")

	v.SetDefault("whitelist.enabled", false)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.login_max_attempts", 10)
	v.SetDefault("rate_limit.register_max_attempts", 5)

	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "feint")
	v.SetDefault("telemetry.sampling_rate", 1.0)
	v.SetDefault("telemetry.enabled", false)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
