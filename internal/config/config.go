package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BUILDPLANNER_"

// Config holds all server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	JWT     JWTConfig     `yaml:"jwt"`
	Redis   RedisConfig   `yaml:"redis"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Planner PlannerConfig `yaml:"planner"`
	Classes []ClassConfig `yaml:"classes"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host           string `yaml:"host" env:"SERVER_HOST"`
	Port           int    `yaml:"port" env:"SERVER_PORT"`
	MaxConnections int    `yaml:"max_connections" env:"SERVER_MAX_CONNECTIONS"`
}

// JWTConfig holds JWT authentication settings. With auth disabled every
// connection plays as an anonymous owner and saved builds are shared.
type JWTConfig struct {
	Enabled             bool   `yaml:"enabled" env:"JWT_ENABLED"`
	Issuer              string `yaml:"issuer" env:"JWT_ISSUER"`
	PublicKeyURL        string `yaml:"public_key_url" env:"JWT_PUBLIC_KEY_URL"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours" env:"JWT_PUBLIC_KEY_REFRESH_HOURS"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address" env:"REDIS_ADDRESS"`
	Password        string `yaml:"password" env:"REDIS_PASSWORD"`
	DB              int    `yaml:"db" env:"REDIS_DB"`
	BlacklistPrefix string `yaml:"blacklist_prefix" env:"REDIS_BLACKLIST_PREFIX"`
	KeyPrefix       string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX"`
}

// StorageConfig selects where saved builds live.
type StorageConfig struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER"` // memory, sqlite or redis
	SQLitePath string `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH"`
}

// CatalogConfig points at the item wiki.
type CatalogConfig struct {
	BaseURL       string        `yaml:"base_url" env:"CATALOG_BASE_URL"`
	RetryAttempts uint          `yaml:"retry_attempts" env:"CATALOG_RETRY_ATTEMPTS"`
	RetryBackoff  time.Duration `yaml:"retry_backoff" env:"CATALOG_RETRY_BACKOFF"`
	FallbackImage string        `yaml:"fallback_image" env:"CATALOG_FALLBACK_IMAGE"`
	FetchLimit    int           `yaml:"fetch_limit" env:"CATALOG_FETCH_LIMIT"`
	RunewordsFile string        `yaml:"runewords_file" env:"CATALOG_RUNEWORDS_FILE"`
}

// PlannerConfig sizes the build grids.
type PlannerConfig struct {
	MainWidth   int `yaml:"main_width" env:"PLANNER_MAIN_WIDTH"`
	MainHeight  int `yaml:"main_height" env:"PLANNER_MAIN_HEIGHT"`
	CharmWidth  int `yaml:"charm_width" env:"PLANNER_CHARM_WIDTH"`
	CharmHeight int `yaml:"charm_height" env:"PLANNER_CHARM_HEIGHT"`
}

// ClassConfig describes a selectable character class.
type ClassConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Weapons     []string `yaml:"weapons"`
}

// Load reads configuration from a YAML file, then applies environment
// overrides. A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 100
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "blacklist:user:"
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "buildplanner:builds:"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "./data/builds.db"
	}
	if cfg.Catalog.RetryAttempts == 0 {
		cfg.Catalog.RetryAttempts = 3
	}
	if cfg.Catalog.RetryBackoff == 0 {
		cfg.Catalog.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.Catalog.FallbackImage == "" {
		cfg.Catalog.FallbackImage = "/img/fallback-icon.png"
	}
	if cfg.Catalog.FetchLimit == 0 {
		cfg.Catalog.FetchLimit = 8
	}
	if cfg.Planner.MainWidth == 0 {
		cfg.Planner.MainWidth = 10
	}
	if cfg.Planner.MainHeight == 0 {
		cfg.Planner.MainHeight = 10
	}
	if cfg.Planner.CharmWidth == 0 {
		cfg.Planner.CharmWidth = 10
	}
	if cfg.Planner.CharmHeight == 0 {
		cfg.Planner.CharmHeight = 3
	}
}

func (cfg *Config) validate() error {
	switch cfg.Storage.Driver {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "redis" && cfg.Redis.Address == "" {
		return fmt.Errorf("redis storage needs redis.address")
	}
	if cfg.JWT.Enabled && (cfg.JWT.PublicKeyURL == "" || cfg.Redis.Address == "") {
		return fmt.Errorf("jwt auth needs jwt.public_key_url and redis.address")
	}
	if cfg.Planner.MainWidth < 0 || cfg.Planner.MainHeight < 0 || cfg.Planner.CharmWidth < 0 || cfg.Planner.CharmHeight < 0 {
		return fmt.Errorf("grid sizes must not be negative")
	}
	return nil
}
