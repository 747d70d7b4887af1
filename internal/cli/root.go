// Package cli implements the gofhir command line client.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	fc "github.com/gofhir/client"
	"github.com/gofhir/client/pkg/logger"
	"github.com/gofhir/client/transport"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath      string
	BaseURL         string
	Version         string
	Cache           bool
	LogLevel        string
	Timeout         time.Duration
	Retries         uint
	RequestIDHeader string
	Headers         []string
	Format          string // "json" | "text"

	// Transport replaces the net/http transport. Tests set it.
	Transport transport.Transport
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gofhir CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gofhir",
		Short: "gofhir - FHIR REST client",
		Long: `A command line client for FHIR REST servers.

Search queries are written as JSON or YAML objects and compiled to FHIR
search strings; references are resolved against local bundles before the
server is asked.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	f.StringVar(&opts.BaseURL, "base-url", "", "FHIR server base URL")
	f.StringVar(&opts.Version, "fhir-version", "", "FHIR version (R4, R4B, R5 or a release such as 4.0.1)")
	f.BoolVar(&opts.Cache, "cache", false, "cache resolved resources for the run")
	f.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error|off)")
	f.DurationVar(&opts.Timeout, "timeout", transport.DefaultTimeout, "HTTP timeout")
	f.UintVar(&opts.Retries, "retries", 0, "attempts per request, including the first")
	f.StringVar(&opts.RequestIDHeader, "request-id-header", "", "header carrying a generated request id")
	f.StringArrayVarP(&opts.Headers, "header", "H", nil, "extra request header \"Name: value\" (repeatable)")
	f.StringVar(&opts.Format, "format", "json", "output format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewReadCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewConformanceCommand(opts))
	cmd.AddCommand(NewWhereCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newClient loads the configuration, applies flag overrides and builds a
// client whose logs go to the command's stderr.
func (o *RootOptions) newClient(cmd *cobra.Command) (*fc.Client, error) {
	cfg, err := LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := o.applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.New(cmd.ErrOrStderr(), level)

	clientOpts, err := cfg.clientOptions(log)
	if err != nil {
		return nil, err
	}

	tr := o.Transport
	if tr == nil {
		tr = transport.NewHTTP(transport.WithTimeout(cfg.Timeout))
	}
	return fc.New(cfg.BaseURL, tr, clientOpts...)
}
