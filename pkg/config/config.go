// Package config loads resourcemap settings.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults ([Default])
//  2. an optional TOML file
//  3. a .env file in the working directory
//  4. RESOURCEMAP_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example file:
//
//	[layout]
//	aspect_ratio = 1.7778
//	engine = "graphviz"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/resourcemap/pkg/cache"
	"github.com/matzehuels/resourcemap/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "RESOURCEMAP_"

// Layout engines.
const (
	EngineGraphviz = "graphviz"
	EngineNone     = "none"
)

// Cache backends.
const (
	CacheNone   = cache.BackendNone
	CacheFile   = cache.BackendFile
	CacheMemory = cache.BackendMemory
	CacheRedis  = cache.BackendRedis
	CacheMongo  = cache.BackendMongo
)

// Config is the full resourcemap configuration.
type Config struct {
	Layout    LayoutConfig    `toml:"layout"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	AspectRatio float64 `toml:"aspect_ratio"`
	Engine      string  `toml:"engine"`      // graphviz or none
	OffsetMode  string  `toml:"offset_mode"` // two-level or full
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	Size          int      `toml:"size"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	KeyPrefix     string   `toml:"key_prefix"` // namespaces keys in a shared backend
}

// Options converts the section into options for cache.Open.
func (c CacheConfig) Options() cache.Options {
	return cache.Options{
		Backend:       c.Backend,
		Dir:           c.Dir,
		Size:          c.Size,
		RedisAddr:     c.RedisAddr,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Endpoint     string  `toml:"endpoint"`
	ServiceName  string  `toml:"service_name"`
	SamplingRate float64 `toml:"sampling_rate"`
}

// Duration is a time.Duration that decodes from TOML strings like "24h".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			AspectRatio: 16.0 / 9.0,
			Engine:      EngineGraphviz,
			OffsetMode:  "two-level",
		},
		Cache: CacheConfig{
			Backend:       CacheFile,
			Size:          512,
			TTL:           Duration{7 * 24 * time.Hour},
			MongoDatabase: "resourcemap",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Telemetry: TelemetryConfig{
			ServiceName:  "resourcemap",
			SamplingRate: 1,
		},
	}
}

// DefaultPath returns the config file read when none is given:
// <user config dir>/resourcemap/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "resourcemap", "config.toml")
}

// Load builds a Config from defaults, the TOML file at path, a .env file and
// the environment. An empty path reads [DefaultPath] if it exists; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
		} else if explicit {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	}

	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load .env")
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults. It does not read the
// environment.
func Parse(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *float64) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, key)
		}
		*dst = f
		return nil
	}

	if err := num("ASPECT_RATIO", &c.Layout.AspectRatio); err != nil {
		return err
	}
	str("ENGINE", &c.Layout.Engine)
	str("OFFSET_MODE", &c.Layout.OffsetMode)

	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("MONGO_URI", &c.Cache.MongoURI)
	str("MONGO_DATABASE", &c.Cache.MongoDatabase)
	str("CACHE_PREFIX", &c.Cache.KeyPrefix)
	if v, ok := lookup(EnvPrefix + "CACHE_SIZE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sCACHE_SIZE", EnvPrefix)
		}
		c.Cache.Size = n
	}
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok {
		if err := c.Cache.TTL.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sCACHE_TTL", EnvPrefix)
		}
	}

	str("ADDR", &c.Server.Addr)
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}

	str("OTEL_ENDPOINT", &c.Telemetry.Endpoint)
	str("SERVICE_NAME", &c.Telemetry.ServiceName)
	return num("SAMPLING_RATE", &c.Telemetry.SamplingRate)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that every field holds a supported value.
func (c Config) Validate() error {
	if err := errors.ValidateAspectRatio(c.Layout.AspectRatio); err != nil {
		return err
	}
	switch c.Layout.Engine {
	case EngineGraphviz, EngineNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown layout engine %q", c.Layout.Engine)
	}
	switch c.Layout.OffsetMode {
	case "", "two-level", "full", "full-chain":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown offset mode %q", c.Layout.OffsetMode)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs redis_addr")
		}
	case CacheMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo cache needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Size < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache size must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}

	if c.Telemetry.Endpoint != "" {
		if err := errors.ValidateURL(c.Telemetry.Endpoint); err != nil {
			return err
		}
	}
	if r := c.Telemetry.SamplingRate; math.IsNaN(r) || r < 0 || r > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "sampling rate must be within [0, 1], got %v", r)
	}
	return nil
}
