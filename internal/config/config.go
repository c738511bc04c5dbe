package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Engagement EngagementConfig `mapstructure:"engagement"`
	Reporting  ReportingConfig  `mapstructure:"reporting"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// AuthConfig holds the shared secret callers present on /honeypot
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
	Header string `mapstructure:"header"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type NATSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	StreamName string `mapstructure:"stream_name"`
	Subject    string `mapstructure:"subject"`
}

// DetectionConfig tunes the keyword classifier without code changes
type DetectionConfig struct {
	ConfidenceBase float64  `mapstructure:"confidence_base"`
	ConfidenceStep float64  `mapstructure:"confidence_step"`
	ConfidenceCap  float64  `mapstructure:"confidence_cap"`
	ExtraKeywords  []string `mapstructure:"extra_keywords"`
}

// EngagementConfig overrides the persona script. Empty values keep the built-in script.
type EngagementConfig struct {
	Replies      []string `mapstructure:"replies"`
	NeutralReply string   `mapstructure:"neutral_reply"`
}

type ReportingConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "honeypot-lab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("auth.api_key", "changeme")
	v.SetDefault("auth.header", "x-api-key")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-API-Key"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.time_format", time.RFC3339)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "honeypot:")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("nats.stream_name", "HONEYPOT_INTEL")
	v.SetDefault("nats.subject", "honeypot.scam_detected")

	v.SetDefault("detection.confidence_base", 0.6)
	v.SetDefault("detection.confidence_step", 0.1)
	v.SetDefault("detection.confidence_cap", 0.99)

	v.SetDefault("reporting.enabled", true)
	v.SetDefault("reporting.timeout", 2*time.Second)
	v.SetDefault("reporting.workers", 2)
	v.SetDefault("reporting.queue_size", 256)
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error when no explicit path is given.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/honeypot-lab")
	}

	v.SetEnvPrefix("HONEYPOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper doesn't auto-bind nested keys that only exist as defaults in some versions
	v.BindEnv("auth.api_key", "HONEYPOT_AUTH_API_KEY", "API_KEY")
	v.BindEnv("app.environment", "HONEYPOT_APP_ENVIRONMENT")
	v.BindEnv("server.http_port", "HONEYPOT_SERVER_HTTP_PORT", "PORT")
	v.BindEnv("redis.enabled", "HONEYPOT_REDIS_ENABLED")
	v.BindEnv("redis.host", "HONEYPOT_REDIS_HOST")
	v.BindEnv("redis.password", "HONEYPOT_REDIS_PASSWORD")
	v.BindEnv("database.enabled", "HONEYPOT_DATABASE_ENABLED")
	v.BindEnv("database.host", "HONEYPOT_DATABASE_HOST")
	v.BindEnv("database.user", "HONEYPOT_DATABASE_USER")
	v.BindEnv("database.password", "HONEYPOT_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "HONEYPOT_DATABASE_DBNAME")
	v.BindEnv("nats.enabled", "HONEYPOT_NATS_ENABLED")
	v.BindEnv("nats.url", "HONEYPOT_NATS_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// Validate rejects settings the classifier cannot work with
func (c *Config) Validate() error {
	d := c.Detection
	if d.ConfidenceBase < 0 || d.ConfidenceBase > 1 {
		return fmt.Errorf("detection.confidence_base must be within [0,1], got %v", d.ConfidenceBase)
	}
	if d.ConfidenceStep < 0 {
		return fmt.Errorf("detection.confidence_step must not be negative, got %v", d.ConfidenceStep)
	}
	if d.ConfidenceCap <= 0 || d.ConfidenceCap >= 1 {
		return fmt.Errorf("detection.confidence_cap must be within (0,1), got %v", d.ConfidenceCap)
	}
	if c.Auth.APIKey == "" {
		return errors.New("auth.api_key must be set")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("ratelimit.requests_per_minute must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	if db := c.Database; db.MaxOpenConns < 0 || db.MaxIdleConns < 0 {
		return errors.New("database connection limits must not be negative")
	} else if db.MaxOpenConns > 0 && db.MaxIdleConns > db.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) exceeds max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	}
	if r := c.Reporting; r.Enabled && (r.Workers <= 0 || r.QueueSize <= 0) {
		return fmt.Errorf("reporting.workers and reporting.queue_size must be positive, got %d and %d", r.Workers, r.QueueSize)
	}
	return nil
}
