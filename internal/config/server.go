package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultGeminiURL is the generateContent endpoint template; {model} is
// substituted with GeminiModel.
const DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent"

// ErrMissingAPIKey is returned by Validate when no upstream credential is set.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is missing; set it in the environment or config file")

// ServerConfig holds configuration for the relay server. It is built once at
// startup and treated as immutable afterwards.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	MetricsAddr     string        `yaml:"metrics_addr" env:"METRICS_PORT"`
	GeminiAPIKey    string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiURL       string        `yaml:"gemini_api_url" env:"GEMINI_API_URL"`
	GeminiModel     string        `yaml:"gemini_model" env:"GEMINI_MODEL"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" env:"UPSTREAM_TIMEOUT"`
	DrainTimeout    time.Duration `yaml:"drain_timeout" env:"DRAIN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL"`
	RedisAddr       string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	ConfigFile      string        `yaml:"-" env:"CONFIG_FILE"`
}

// SetDefaults initializes c with built-in defaults.
func (c *ServerConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.GeminiURL == "" {
		c.GeminiURL = DefaultGeminiURL
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-1.5-flash"
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = 60 * time.Second
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 30 * time.Second
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 10 << 20
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath()
	}
}

// ApplyEnv overlays environment variables onto the current config values.
// Variables that are unset leave the current value untouched.
func (c *ServerConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	c.MetricsAddr = normalizeAddr(c.MetricsAddr)
	return nil
}

// LoadFile populates the config from a YAML file.
func (c *ServerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.MetricsAddr = normalizeAddr(c.MetricsAddr)
	return nil
}

// BindFlagsFromCurrent binds command line flags on fs using the current
// config values as defaults.
func (c *ServerConfig) BindFlagsFromCurrent(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	fs.StringVar(&c.Host, "host", c.Host, "interface to bind; empty binds all interfaces")
	fs.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the public API")
	fs.Func("metrics-port", "Prometheus metrics listen address or port; defaults to the API port", func(v string) error {
		c.MetricsAddr = normalizeAddr(v)
		return nil
	})
	fs.StringVar(&c.GeminiAPIKey, "gemini-api-key", c.GeminiAPIKey, "Gemini API key (prefer GEMINI_API_KEY)")
	fs.StringVar(&c.GeminiURL, "gemini-api-url", c.GeminiURL, "generateContent endpoint; {model} is replaced by --gemini-model")
	fs.StringVar(&c.GeminiModel, "gemini-model", c.GeminiModel, "Gemini model name")
	fs.DurationVar(&c.UpstreamTimeout, "upstream-timeout", c.UpstreamTimeout, "maximum duration of one upstream call")
	fs.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "time to wait for in-flight requests on shutdown (-1 to wait indefinitely, 0 to exit immediately)")
	fs.Int64Var(&c.MaxBodyBytes, "max-body-bytes", c.MaxBodyBytes, "maximum accepted request body size")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis connection URL for shared server state")
	fs.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
}

// Validate reports configuration that prevents the relay from serving.
func (c *ServerConfig) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if !strings.Contains(c.GeminiURL, "://") {
		return fmt.Errorf("invalid gemini url %q", c.GeminiURL)
	}
	return nil
}

// ListenAddr is the address of the public API listener.
func (c ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MetricsListenAddr is the address /metrics is served on.
func (c ServerConfig) MetricsListenAddr() string {
	if c.MetricsAddr == "" {
		return fmt.Sprintf(":%d", c.Port)
	}
	return c.MetricsAddr
}

// MetricsOnAPIPort reports whether /metrics shares the public API listener.
func (c ServerConfig) MetricsOnAPIPort() bool {
	return c.MetricsListenAddr() == fmt.Sprintf(":%d", c.Port)
}

// Load resolves the configuration with precedence
// defaults < file < env < args and validates the result.
// A missing config file is not an error.
func Load(fs *flag.FlagSet, args []string) (ServerConfig, error) {
	var cfg ServerConfig
	cfg.SetDefaults()
	// CONFIG_FILE may come from the environment
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if p := configFileFromArgs(args); p != "" {
		cfg.ConfigFile = p
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	cfg.BindFlagsFromCurrent(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func configFileFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if (a == "--config" || a == "-config") && i+1 < len(args) {
			return args[i+1]
		}
		for _, p := range []string{"--config=", "-config="} {
			if strings.HasPrefix(a, p) {
				return strings.TrimPrefix(a, p)
			}
		}
	}
	return ""
}

func normalizeAddr(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.Contains(v, ":") {
		return v
	}
	return ":" + v
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
