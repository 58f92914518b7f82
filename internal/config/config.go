package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Roster   RosterConfig   `yaml:"roster" mapstructure:"roster"`
	Clearbit ClearbitConfig `yaml:"clearbit" mapstructure:"clearbit"`
	Enrich   EnrichConfig   `yaml:"enrich" mapstructure:"enrich"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Map      MapConfig      `yaml:"map" mapstructure:"map"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RosterConfig locates the vendor roster input.
type RosterConfig struct {
	Source string `yaml:"source" mapstructure:"source"`
}

// ClearbitConfig configures the company enrichment API.
type ClearbitConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	CompanyURL      string `yaml:"company_url" mapstructure:"company_url"`
	AutocompleteURL string `yaml:"autocomplete_url" mapstructure:"autocomplete_url"`
	MaxRetries      int    `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs  int    `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	MinIntervalMS   int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
	TimeoutSecs     int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EnrichConfig configures the enrichment pipeline.
type EnrichConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the relationship table backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DSN returns the driver-appropriate data source: a connection string
// for postgres, a file path otherwise.
func (c StoreConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.DatabaseURL
	}
	return c.Path
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	StaticDir      string   `yaml:"static_dir" mapstructure:"static_dir"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	CacheEntries   int      `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLSecs   int      `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
}

// MapConfig holds the front-end map settings served at /api/config/map.
type MapConfig struct {
	MapboxToken string  `yaml:"mapbox_token" mapstructure:"mapbox_token"`
	Style       string  `yaml:"style" mapstructure:"style"`
	CenterLng   float64 `yaml:"center_lng" mapstructure:"center_lng"`
	CenterLat   float64 `yaml:"center_lat" mapstructure:"center_lat"`
	Zoom        float64 `yaml:"zoom" mapstructure:"zoom"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONNECTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("roster.source", "data/proven_connections.csv")
	v.SetDefault("clearbit.company_url", "https://company.clearbit.com/v2/companies/find")
	v.SetDefault("clearbit.autocomplete_url", "https://autocomplete.clearbit.com/v1/companies/suggest")
	v.SetDefault("clearbit.max_retries", 3)
	v.SetDefault("clearbit.retry_delay_secs", 2)
	v.SetDefault("clearbit.min_interval_ms", 100)
	v.SetDefault("clearbit.timeout_secs", 15)
	v.SetDefault("enrich.concurrency", 5)
	v.SetDefault("store.driver", "csv")
	v.SetDefault("store.path", "data/relationships.csv")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.cache_entries", 256)
	v.SetDefault("server.cache_ttl_secs", 300)
	v.SetDefault("map.style", "mapbox://styles/mapbox/light-v10")
	v.SetDefault("map.center_lng", -98.5795)
	v.SetDefault("map.center_lat", 39.8283)
	v.SetDefault("map.zoom", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
