package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "CATALOG_CONFIG_FILE"
	envPrefix         = "CATALOG"
)

type upstream struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type gateway struct {
	SelfURL    string        `mapstructure:"self_url"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	Burst      int           `mapstructure:"burst"`
	VisitorTTL time.Duration `mapstructure:"visitor_ttl"`
}

type redis struct {
	Addr       string        `mapstructure:"addr"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type workspace struct {
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type stub struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	LogLevel       string    `mapstructure:"log_level"`
	HTTPServerAddr string    `mapstructure:"http_server_addr"`
	Upstream       upstream  `mapstructure:"upstream"`
	Gateway        gateway   `mapstructure:"gateway"`
	Redis          redis     `mapstructure:"redis"`
	Workspace      workspace `mapstructure:"workspace"`
	Stub           stub      `mapstructure:"stub"`
}

var defaults = map[string]any{
	"log_level":                  "info",
	"http_server_addr":           ":8080",
	"upstream.url":               "https://course.summitglobal.id/products",
	"upstream.timeout":           10 * time.Second,
	"gateway.self_url":           "http://localhost:8080/api/products",
	"gateway.rate_limit":         5.0,
	"gateway.burst":              10,
	"gateway.visitor_ttl":        5 * time.Minute,
	"redis.addr":                 "",
	"redis.session_ttl":          24 * time.Hour,
	"workspace.idle_ttl":         30 * time.Minute,
	"workspace.cleanup_interval": time.Minute,
	"stub.enabled":               false,
}

// Load reads the optional config file named by --config or
// CATALOG_CONFIG_FILE, then applies CATALOG_* environment overrides.
func Load(args []string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("catalog-console", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env, nil
	}
	return *arg, nil
}

func (c Config) validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.Upstream.URL == "" {
		errs = append(errs, errors.New("upstream.url is required"))
	}
	if c.Gateway.SelfURL == "" {
		errs = append(errs, errors.New("gateway.self_url is required"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.Workspace.CleanupInterval <= 0 {
		errs = append(errs, errors.New("workspace.cleanup_interval must be positive"))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Print writes the effective configuration to stdout.
func (c Config) Print() {
	tmpl := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q

	Upstream:
	URL=%q
	Timeout=%s

	Gateway:
	SelfURL=%q
	RateLimit=%v
	Burst=%d
	VisitorTTL=%s

	Sessions:
	RedisAddr=%q
	SessionTTL=%s

	Workspace:
	IdleTTL=%s
	CleanupInterval=%s

	StubEnabled=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tmpl, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Upstream.URL,
		c.Upstream.Timeout,
		c.Gateway.SelfURL,
		c.Gateway.RateLimit,
		c.Gateway.Burst,
		c.Gateway.VisitorTTL,
		c.Redis.Addr,
		c.Redis.SessionTTL,
		c.Workspace.IdleTTL,
		c.Workspace.CleanupInterval,
		c.Stub.Enabled,
	)
}
