package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for doclens
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	BaseURL      string   `mapstructure:"base_url"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	Seed bool   `mapstructure:"seed"`
}

// CacheConfig holds details cache configuration
type CacheConfig struct {
	Shards int `mapstructure:"shards"`
	TTL    int `mapstructure:"ttl"` // seconds
}

// PaginationConfig holds list and section paging defaults
type PaginationConfig struct {
	DefaultLimit    int `mapstructure:"default_limit"`
	MaxLimit        int `mapstructure:"max_limit"`
	SectionPageSize int `mapstructure:"section_page_size"`
}

// UploadConfig holds upload validation rules
type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// SimulationConfig tunes the mocked backend behaviour
type SimulationConfig struct {
	ListDelay         time.Duration `mapstructure:"list_delay"`
	DetailDelay       time.Duration `mapstructure:"detail_delay"`
	UploadDelay       time.Duration `mapstructure:"upload_delay"`
	UploadFailureRate float64       `mapstructure:"upload_failure_rate"`
	StatusInterval    time.Duration `mapstructure:"status_interval"`
}

// Load loads configuration from file and environment
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
	}

	v.SetEnvPrefix("DOCLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("database.path", ":memory:")
	v.SetDefault("database.seed", true)

	v.SetDefault("cache.shards", 16)
	v.SetDefault("cache.ttl", 900)

	v.SetDefault("pagination.default_limit", 10)
	v.SetDefault("pagination.max_limit", 100)
	v.SetDefault("pagination.section_page_size", 5)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"pdf", "docx", "pptx", "xlsx"})

	v.SetDefault("simulation.list_delay", 500*time.Millisecond)
	v.SetDefault("simulation.detail_delay", 300*time.Millisecond)
	v.SetDefault("simulation.upload_delay", 2*time.Second)
	v.SetDefault("simulation.upload_failure_rate", 0.1)
	v.SetDefault("simulation.status_interval", time.Duration(0))
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Cache.Shards < 1 {
		return fmt.Errorf("cache.shards must be at least 1")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be non-negative")
	}
	if c.Pagination.DefaultLimit < 1 {
		return fmt.Errorf("pagination.default_limit must be at least 1")
	}
	if c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("pagination.max_limit must be >= pagination.default_limit")
	}
	if c.Pagination.SectionPageSize < 1 {
		return fmt.Errorf("pagination.section_page_size must be at least 1")
	}
	if c.Upload.MaxSize < 0 {
		return fmt.Errorf("upload.max_size must be non-negative")
	}
	if c.Simulation.UploadFailureRate < 0 || c.Simulation.UploadFailureRate > 1 {
		return fmt.Errorf("simulation.upload_failure_rate must be between 0 and 1")
	}
	if c.Simulation.ListDelay < 0 || c.Simulation.DetailDelay < 0 || c.Simulation.UploadDelay < 0 {
		return fmt.Errorf("simulation delays must be non-negative")
	}
	if c.Simulation.StatusInterval < 0 {
		return fmt.Errorf("simulation.status_interval must be non-negative")
	}
	return nil
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
