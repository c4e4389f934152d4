package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GatewayConfig struct {
	Port           int             `yaml:"port"`
	ServerURL      string          `yaml:"server_url"`
	ForwardTimeout time.Duration   `yaml:"forward_timeout"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	MetricsPort    int             `yaml:"metrics_port"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type DatabaseConfig struct {
	// DSN selects PostgreSQL when it starts with postgres:// or postgresql://.
	DSN          string      `yaml:"dsn"`
	Path         string      `yaml:"path"`
	MaxOpenConns int         `yaml:"max_open_conns"`
	Connect      RetryConfig `yaml:"connect"`
}

type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Load reads the YAML file at configPath, expanding ${VAR} references from the
// environment. A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" && c.Database.Path == "" {
		return errors.New("database dsn or path is required")
	}

	if c.Gateway.ServerURL != "" &&
		!strings.HasPrefix(c.Gateway.ServerURL, "http://") &&
		!strings.HasPrefix(c.Gateway.ServerURL, "https://") {
		return fmt.Errorf("gateway.server_url must be an http(s) URL, got %q", c.Gateway.ServerURL)
	}

	if c.Gateway.RateLimit.Enabled && c.Gateway.RateLimit.Requests <= 0 {
		return errors.New("gateway.rate_limit.requests must be positive when rate limiting is enabled")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return errors.New("tracing.endpoint is required when tracing is enabled")
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0,1], got %v", c.Tracing.SampleRatio)
	}

	return nil
}

// IsPostgres reports whether the DSN targets PostgreSQL.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.DSN, "postgres://") || strings.HasPrefix(d.DSN, "postgresql://")
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9090
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Gateway.ServerURL == "" {
		c.Gateway.ServerURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Gateway.ForwardTimeout == 0 {
		c.Gateway.ForwardTimeout = 10 * time.Second
	}
	if c.Gateway.RateLimit.Window == 0 {
		c.Gateway.RateLimit.Window = time.Minute
	}
	if c.Gateway.RateLimit.Enabled && c.Gateway.RateLimit.Requests == 0 {
		c.Gateway.RateLimit.Requests = 120
	}

	if c.Database.Path == "" && c.Database.DSN == "" {
		c.Database.Path = "shareit.db"
	}
	if c.Database.Connect.MaxRetries == 0 {
		c.Database.Connect.MaxRetries = 5
	}
	if c.Database.Connect.InitialDelay == 0 {
		c.Database.Connect.InitialDelay = 500 * time.Millisecond
	}
	if c.Database.Connect.MaxDelay == 0 {
		c.Database.Connect.MaxDelay = 10 * time.Second
	}

	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9102
	}
	if c.Monitoring.PrometheusEnabled && c.Gateway.MetricsPort == 0 {
		c.Gateway.MetricsPort = c.Monitoring.PrometheusPort + 1
	}

	if c.Tracing.Enabled && c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1
	}
}
