package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the SEO enhancement service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Health    HealthConfig    `mapstructure:"health"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"` // empty leaves /v1 open
}

// TelemetryConfig controls metrics export
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"` // traces are exported only when set
}

// ProvidersConfig is the credentials bag handed to the gateways, keyed by provider.
type ProvidersConfig struct {
	Ahrefs  APIProviderConfig `mapstructure:"ahrefs"`
	Semrush APIProviderConfig `mapstructure:"semrush"`
	SEOMCP  MCPProviderConfig `mapstructure:"seo_mcp"`
}

// APIProviderConfig configures a keyed HTTP SEO API.
type APIProviderConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// MCPProviderConfig configures the SEO MCP server and its health endpoint.
type MCPProviderConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Endpoint  string        `mapstructure:"endpoint"`
	Token     string        `mapstructure:"token"`
	HealthURL string        `mapstructure:"health_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig selects the response cache backend
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // memory | redis
	Expiry     time.Duration `mapstructure:"expiry"`
	MaxEntries int           `mapstructure:"max_entries"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Normalize applies defaults for unset cache values.
func (c CacheConfig) Normalize() CacheConfig {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = CacheBackendMemory
	}
	if c.Expiry <= 0 {
		c.Expiry = time.Hour
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = 4096
	}
	if strings.TrimSpace(c.KeyPrefix) == "" {
		c.KeyPrefix = "seoagent:cache:"
	}
	return c
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.Backend)
	}
	if c.Expiry <= 0 {
		return fmt.Errorf("cache.expiry must be > 0")
	}
	return nil
}

// StorageConfig contains storage settings
type StorageConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// ToolsConfig overrides which provider serves a tool, e.g. {"domain-overview": "semrush"}.
type ToolsConfig struct {
	Routes map[string]string `mapstructure:"routes"`
}

// HealthConfig controls periodic provider health checks in serve mode.
type HealthConfig struct {
	Schedule string        `mapstructure:"schedule"` // cron expression, empty disables
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (h HealthConfig) Normalize() HealthConfig {
	h.Schedule = strings.TrimSpace(h.Schedule)
	if h.Timeout <= 0 {
		h.Timeout = 10 * time.Second
	}
	return h
}

// LoadConfig loads config from file, .env and SEOAGENT_* environment variables.
// A missing config file is not an error when no explicit path is given.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", 30*time.Second)
	v.SetDefault("server.address", ":10001")
	v.SetDefault("telemetry.service_name", "seoagent")
	v.SetDefault("providers.ahrefs.enabled", true)
	v.SetDefault("providers.ahrefs.timeout", 30*time.Second)
	v.SetDefault("providers.semrush.enabled", true)
	v.SetDefault("providers.semrush.timeout", 25*time.Second)
	v.SetDefault("providers.seo_mcp.enabled", true)
	v.SetDefault("providers.seo_mcp.endpoint", "http://localhost:8000/mcp")
	v.SetDefault("providers.seo_mcp.health_url", "http://localhost:8000/health")
	v.SetDefault("providers.seo_mcp.timeout", 30*time.Second)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.expiry", time.Hour)
	v.SetDefault("cache.max_entries", 4096)
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.timeout", 5*time.Second)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SEOAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names used by existing deployments
	_ = v.BindEnv("providers.ahrefs.api_key", "SEOAGENT_PROVIDERS_AHREFS_API_KEY", "AHREFS_API_KEY")
	_ = v.BindEnv("providers.semrush.api_key", "SEOAGENT_PROVIDERS_SEMRUSH_API_KEY", "SEMRUSH_API_KEY")
	_ = v.BindEnv("providers.seo_mcp.endpoint", "SEOAGENT_PROVIDERS_SEO_MCP_ENDPOINT", "SEO_MCP_ENDPOINT")
	_ = v.BindEnv("server.jwt_secret", "SEOAGENT_SERVER_JWT_SECRET", "SEOAGENT_JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Cache = cfg.Cache.Normalize()
	cfg.Health = cfg.Health.Normalize()

	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	if cfg.Cache.Backend == CacheBackendRedis {
		if err := cfg.Storage.Redis.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
