package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server config
const SERVER_ADDRESS = ":8080"
const SERVER_SHUTDOWN_TIMEOUT_SECONDS = 5

// Redis Config
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// NATS config
const NATS_URL = "nats://localhost:4222"
const NATS_PROFILE_SUBJECT = "elevation.profile.updated"

// Elevation API config
const ELEVATION_ENDPOINT_BASE_V1 = "https://maps.googleapis.com/maps/api/elevation"
const ELEVATION_SAMPLES = 30
const ELEVATION_TIMEOUT_SECONDS = 10
const ELEVATION_RATE_PER_SECOND = 10.0
const ELEVATION_RATE_BURST = 5
const ELEVATION_CACHE_SIZE = 256
const ELEVATION_PATH_ENCODING_PLAIN = "plain"
const ELEVATION_PATH_ENCODING_POLYLINE = "polyline"

// Chart config
const CHART_Y_FLOOR = -100.0
const CHART_TRANSITION_MILLISECONDS = 750
const CHART_WIDTH = "600px"
const CHART_HEIGHT = "270px"

// Initial rectangle, centered on 44.5452,-78.5389
const REGION_NORTH = 44.599
const REGION_SOUTH = 44.490
const REGION_EAST = -78.443
const REGION_WEST = -78.649

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const SEED_PROFILE_RESOURCE = "data2.json"

// Environments
const ENV_PROD = "prod"
const ENV_DEV = "dev"

// Config is the runtime configuration. Every field has a default from the
// constants above; a config.yaml file and PROFILE_SERVER_* env vars override it.
type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Elevation ElevationConfig `mapstructure:"elevation"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Refresher RefresherConfig `mapstructure:"refresher"`
	Region    RegionConfig    `mapstructure:"region"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type ElevationConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Samples       int           `mapstructure:"samples"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PathEncoding  string        `mapstructure:"path_encoding"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	CacheSize     int           `mapstructure:"cache_size"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type SeedConfig struct {
	Path string `mapstructure:"path"`
}

type RefresherConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type RegionConfig struct {
	North     float64 `mapstructure:"north"`
	South     float64 `mapstructure:"south"`
	East      float64 `mapstructure:"east"`
	West      float64 `mapstructure:"west"`
	Editable  bool    `mapstructure:"editable"`
	Draggable bool    `mapstructure:"draggable"`
}

// Load reads configuration for env from defaults, an optional config.yaml and the environment.
func Load(env string) (*Config, error) {
	v := viper.New()
	setDefaults(v, env)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(BaseDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// PROFILE_SERVER_ELEVATION_API_KEY -> elevation.api_key
	v.SetEnvPrefix("PROFILE_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Load would produce with no file and no env overrides.
func Default(env string) *Config {
	v := viper.New()
	setDefaults(v, env)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("invalid default config: " + err.Error())
	}
	return &cfg
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("env", env)
	v.SetDefault("server.addr", SERVER_ADDRESS)

	v.SetDefault("elevation.base_url", ELEVATION_ENDPOINT_BASE_V1)
	v.SetDefault("elevation.api_key", "")
	v.SetDefault("elevation.samples", ELEVATION_SAMPLES)
	v.SetDefault("elevation.timeout", ELEVATION_TIMEOUT_SECONDS*time.Second)
	v.SetDefault("elevation.path_encoding", ELEVATION_PATH_ENCODING_PLAIN)
	v.SetDefault("elevation.rate_per_second", ELEVATION_RATE_PER_SECOND)
	v.SetDefault("elevation.burst", ELEVATION_RATE_BURST)
	v.SetDefault("elevation.cache_size", ELEVATION_CACHE_SIZE)

	v.SetDefault("redis.enabled", env == ENV_PROD)
	v.SetDefault("redis.addr", REDIS_DB_ADDRESS)
	v.SetDefault("redis.password", REDIS_DB_PASSWORD)
	v.SetDefault("redis.db", REDIS_DB)

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", NATS_URL)
	v.SetDefault("nats.subject", NATS_PROFILE_SUBJECT)

	v.SetDefault("seed.path", GetResourcePath(SEED_PROFILE_RESOURCE))
	v.SetDefault("refresher.interval", time.Duration(0))

	v.SetDefault("region.north", REGION_NORTH)
	v.SetDefault("region.south", REGION_SOUTH)
	v.SetDefault("region.east", REGION_EAST)
	v.SetDefault("region.west", REGION_WEST)
	v.SetDefault("region.editable", true)
	v.SetDefault("region.draggable", true)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Env != ENV_PROD && c.Env != ENV_DEV {
		errs = append(errs, fmt.Sprintf("env must be %q or %q, got %q", ENV_PROD, ENV_DEV, c.Env))
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Elevation.Samples < 2 {
		errs = append(errs, fmt.Sprintf("elevation.samples must be at least 2, got %d", c.Elevation.Samples))
	}
	if c.Elevation.Timeout <= 0 {
		errs = append(errs, "elevation.timeout must be positive")
	}
	if c.Elevation.PathEncoding != ELEVATION_PATH_ENCODING_PLAIN && c.Elevation.PathEncoding != ELEVATION_PATH_ENCODING_POLYLINE {
		errs = append(errs, fmt.Sprintf("elevation.path_encoding must be %q or %q", ELEVATION_PATH_ENCODING_PLAIN, ELEVATION_PATH_ENCODING_POLYLINE))
	}
	if c.Elevation.RatePerSecond <= 0 || c.Elevation.Burst <= 0 {
		errs = append(errs, "elevation.rate_per_second and elevation.burst must be positive")
	}
	if c.Env == ENV_PROD {
		if c.Elevation.BaseURL == "" {
			errs = append(errs, "elevation.base_url is required")
		}
		if c.Elevation.APIKey == "" {
			errs = append(errs, "elevation.api_key is required in prod")
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required when redis is enabled")
	}
	if c.NATS.Enabled && (c.NATS.URL == "" || c.NATS.Subject == "") {
		errs = append(errs, "nats.url and nats.subject are required when nats is enabled")
	}
	if c.Refresher.Interval < 0 {
		errs = append(errs, "refresher.interval must not be negative")
	}
	if c.Region.North <= c.Region.South || c.Region.East <= c.Region.West {
		errs = append(errs, "region must have north > south and east > west")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resource_file string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resource_file)
}
