package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	fc "github.com/gofhir/client"
	"github.com/gofhir/client/middleware"
	"github.com/gofhir/client/pkg/logger"
	"github.com/gofhir/client/transport"
)

// Config is the CLI configuration file. Flags given on the command line
// override the values read from it.
type Config struct {
	BaseURL         string            `yaml:"base_url"`
	Version         string            `yaml:"version"`
	Cache           bool              `yaml:"cache"`
	LogLevel        string            `yaml:"log_level"`
	Timeout         time.Duration     `yaml:"timeout"`
	Headers         map[string]string `yaml:"headers"`
	RequestIDHeader string            `yaml:"request_id_header"`
	Retry           RetryConfig       `yaml:"retry"`
}

// RetryConfig configures the retry interceptor. Attempts of 0 or 1
// disables retrying.
type RetryConfig struct {
	Attempts        uint          `yaml:"attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Timeout:  transport.DefaultTimeout,
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlags overrides cfg with the persistent flags the user set.
func (o *RootOptions) applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()

	if flags.Changed("base-url") {
		cfg.BaseURL = o.BaseURL
	}
	if flags.Changed("fhir-version") {
		cfg.Version = o.Version
	}
	if flags.Changed("cache") {
		cfg.Cache = o.Cache
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
	if flags.Changed("retries") {
		cfg.Retry.Attempts = o.Retries
	}
	if flags.Changed("request-id-header") {
		cfg.RequestIDHeader = o.RequestIDHeader
	}
	for _, h := range o.Headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid header %q: want \"Name: value\"", h)
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("no base URL: set base_url in the config file or pass --base-url")
	}
	return nil
}

// clientOptions translates cfg into client options.
func (cfg *Config) clientOptions(log *logger.Logger) ([]fc.Option, error) {
	opts := []fc.Option{
		fc.WithLogger(log),
		fc.WithCache(cfg.Cache),
	}

	if cfg.Version != "" {
		v := fc.FHIRVersion(strings.ToUpper(cfg.Version))
		if !v.IsValid() {
			rv, ok := fc.VersionFromRelease(cfg.Version)
			if !ok {
				return nil, fmt.Errorf("unsupported FHIR version %q", cfg.Version)
			}
			v = rv
		}
		opts = append(opts, fc.WithVersion(v))
	}

	if len(cfg.Headers) > 0 {
		h := make(http.Header, len(cfg.Headers))
		for k, v := range cfg.Headers {
			h.Set(k, v)
		}
		opts = append(opts, fc.WithHeaders(h))
	}

	if cfg.RequestIDHeader != "" {
		opts = append(opts, fc.WithRequestID(cfg.RequestIDHeader))
	}

	if cfg.Retry.Attempts > 1 {
		ro := middleware.DefaultRetryOptions()
		ro.MaxTries = cfg.Retry.Attempts
		if cfg.Retry.InitialInterval > 0 {
			ro.InitialInterval = cfg.Retry.InitialInterval
		}
		if cfg.Retry.MaxInterval > 0 {
			ro.MaxInterval = cfg.Retry.MaxInterval
		}
		ro.Notify = func(err error, next time.Duration) {
			log.Warn("retrying in %s: %v", next, err)
		}
		opts = append(opts, fc.WithRetry(ro))
	}

	return opts, nil
}
