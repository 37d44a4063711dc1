package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Zones     ZonesConfig     `mapstructure:"zones"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// RouteTimeout bounds a whole /route request, both provider round-trips included.
	RouteTimeout int    `mapstructure:"route_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

// ProviderConfig configures the TomTom search and routing gateway.
type ProviderConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	CountrySet   string `mapstructure:"country_set"`
	SuggestLimit int    `mapstructure:"suggest_limit"`
	Timeout      int    `mapstructure:"timeout"`
}

// RoutingConfig tunes the safe-route heuristic.
type RoutingConfig struct {
	SampleStride  int `mapstructure:"sample_stride"`
	MaxAvoidAreas int `mapstructure:"max_avoid_areas"`
}

type ZonesConfig struct {
	Path string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables and validates
// it for the API server.
func Load(service string) (*Config, error) {
	return load(service, (*Config).Validate)
}

// LoadWorker is Load for processes that never call the routing provider
// (report archiver, migrations). The provider key is not required.
func LoadWorker(service string) (*Config, error) {
	return load(service, (*Config).ValidateWorker)
}

func load(service string, validate func(*Config) error) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.route_timeout", 25)
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "https://api.tomtom.com")
	v.SetDefault("provider.country_set", "IN")
	v.SetDefault("provider.suggest_limit", 5)
	v.SetDefault("provider.timeout", 10)
	v.SetDefault("routing.sample_stride", 10)
	v.SetDefault("routing.max_avoid_areas", 10)
	v.SetDefault("zones.path", "zones.json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "saferoute")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "saferoute")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SAFEROUTE_PROVIDER_API_KEY → provider.api_key
	v.SetEnvPrefix("SAFEROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The map page deployment has always shipped the key as API_KEY in .env.
	if err := v.BindEnv("provider.api_key", "SAFEROUTE_PROVIDER_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("log.level", "SAFEROUTE_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RouteTimeout <= 0 {
		errs = append(errs, "server.route_timeout must be positive")
	}
	if c.Provider.APIKey == "" {
		errs = append(errs, "provider.api_key is required (set API_KEY or SAFEROUTE_PROVIDER_API_KEY)")
	}
	if c.Provider.BaseURL == "" {
		errs = append(errs, "provider.base_url is required")
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, "provider.timeout must be positive")
	}
	if c.Provider.SuggestLimit <= 0 {
		errs = append(errs, "provider.suggest_limit must be positive")
	}
	if c.Routing.SampleStride <= 0 {
		errs = append(errs, fmt.Sprintf("routing.sample_stride must be positive, got %d", c.Routing.SampleStride))
	}
	if c.Routing.MaxAvoidAreas <= 0 || c.Routing.MaxAvoidAreas > 10 {
		errs = append(errs, fmt.Sprintf("routing.max_avoid_areas must be 1-10, got %d", c.Routing.MaxAvoidAreas))
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}

	return joinErrors(errs)
}

// ValidateWorker checks the broker and database settings used by the report
// archiver.
func (c *Config) ValidateWorker() error {
	var errs []string

	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}

	return joinErrors(errs)
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
