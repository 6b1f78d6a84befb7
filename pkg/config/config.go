// Package config loads agridash settings from an optional YAML file, an optional
// .env file and the process environment, in that order of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverREST   = "rest"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMock   = "mock"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const envPrefix = "AGRIDASH_"

var (
	ErrMissingStoreCredentials = errors.New("config: missing Supabase environment variables, set SUPABASE_URL and SUPABASE_ANON_KEY")
	ErrMissingDSN              = errors.New("config: store dsn is required for sql drivers")
	ErrUnknownDriver           = errors.New("config: unknown store driver")
	ErrUnknownLogFormat        = errors.New("config: unknown log format")
	errInvalidEnvValue         = errors.New("config: invalid environment value")
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig `yaml:"server"`
	Store    StoreConfig  `yaml:"store"`
	Charts   ChartsConfig `yaml:"charts"`
	Log      LogConfig    `yaml:"log"`
	Fixtures string       `yaml:"fixtures"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BasePath  string `yaml:"base_path"`
	// APIAddr starts a second net/http listener for the JSON API when set.
	APIAddr   string `yaml:"api_addr"`
	// Templates points at a directory that replaces the embedded page templates.
	Templates string `yaml:"templates"`
}

// StoreConfig selects and configures the remote data store.
type StoreConfig struct {
	Driver     string        `yaml:"driver"`
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	DSN        string        `yaml:"dsn"`
	Collection string        `yaml:"collection"`
	Limit      int           `yaml:"limit"`
	RowLimit   int           `yaml:"row_limit"`
	Timeout    time.Duration `yaml:"timeout"`
	// UseRecords loads visualization datasets from the store instead of the fixtures.
	UseRecords bool `yaml:"use_records"`
}

// ChartsConfig controls chart rendering.
type ChartsConfig struct {
	Theme    string        `yaml:"theme"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// AssetsHost serves the ECharts scripts. Empty uses the public go-echarts bucket.
	AssetsHost string `yaml:"assets_host"`
}

// LogConfig controls the apex/log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", BasePath: "/admin"},
		Store: StoreConfig{
			Driver:     DriverREST,
			Collection: "crops",
			Limit:      1,
			RowLimit:   100,
			Timeout:    5 * time.Second,
		},
		Charts: ChartsConfig{Theme: "westeros", CacheTTL: 5 * time.Minute},
		Log:    LogConfig{Level: "info", Format: FormatText},
	}
}

// Options controls where Load reads from.
type Options struct {
	// File is an optional YAML file. A missing file is an error only when set explicitly.
	File string
	// EnvFile is an optional dotenv file. Missing files are ignored.
	EnvFile string
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Load builds the configuration and validates it.
func Load(opts Options) (Config, error) {
	cfg := Default()
	if opts.File != "" {
		raw, err := os.ReadFile(opts.File)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.File, err)
		}
		if err := decodeYAML(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", opts.File, err)
		}
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.EnvFile, err)
		}
		if values != nil {
			dotenv = values
		}
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		for _, key := range keys {
			if v, ok := dotenv[key]; ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}
	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(raw []byte, cfg *Config) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyEnv(cfg *Config, env func(keys ...string) (string, bool)) error {
	setString := func(dst *string, keys ...string) {
		if v, ok := env(keys...); ok {
			*dst = v
		}
	}
	setString(&cfg.Server.Addr, envPrefix+"ADDR")
	setString(&cfg.Server.BasePath, envPrefix+"BASE_PATH")
	setString(&cfg.Server.Templates, envPrefix+"TEMPLATES")
	setString(&cfg.Server.APIAddr, envPrefix+"API_ADDR")
	setString(&cfg.Store.Driver, envPrefix+"STORE_DRIVER")
	setString(&cfg.Store.URL, envPrefix+"STORE_URL", "SUPABASE_URL", "VITE_SUPABASE_URL")
	setString(&cfg.Store.APIKey, envPrefix+"STORE_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY")
	setString(&cfg.Store.DSN, envPrefix+"STORE_DSN")
	setString(&cfg.Store.Collection, envPrefix+"PROBE_COLLECTION")
	setString(&cfg.Charts.Theme, envPrefix+"CHART_THEME")
	setString(&cfg.Charts.AssetsHost, envPrefix+"ECHARTS_CDN")
	setString(&cfg.Log.Level, envPrefix+"LOG_LEVEL")
	setString(&cfg.Log.Format, envPrefix+"LOG_FORMAT")
	setString(&cfg.Fixtures, envPrefix+"FIXTURES")

	var errs error
	if v, ok := env(envPrefix + "ROW_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%w: %sROW_LIMIT=%q", errInvalidEnvValue, envPrefix, v))
		} else {
			cfg.Store.RowLimit = n
		}
	}
	if v, ok := env(envPrefix + "STORE_RECORDS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%w: %sSTORE_RECORDS=%q", errInvalidEnvValue, envPrefix, v))
		} else {
			cfg.Store.UseRecords = b
		}
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{envPrefix + "PROBE_TIMEOUT", &cfg.Store.Timeout},
		{envPrefix + "CHART_CACHE_TTL", &cfg.Charts.CacheTTL},
	}
	for _, d := range durations {
		v, ok := env(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%w: %s=%q", errInvalidEnvValue, d.key, v))
			continue
		}
		*d.dst = parsed
	}
	return errs
}

// Validate checks driver requirements and normalizes casing.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch c.Store.Driver {
	case DriverREST:
		if c.Store.URL == "" || c.Store.APIKey == "" {
			return ErrMissingStoreCredentials
		}
	case DriverMySQL, DriverSQLite:
		if c.Store.DSN == "" {
			return ErrMissingDSN
		}
	case DriverMock:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}
	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Log.Format)
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/"
	}
	return nil
}
