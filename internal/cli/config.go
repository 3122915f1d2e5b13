// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

// Config holds the settings shared by every subcommand. Environment
// variables seed the values; flags override them.
type Config struct {
	LogLevel string `env:"QOC_LOG_LEVEL" envDefault:"info"`
	Backend  string `env:"QOC_BACKEND" envDefault:"native"`
	Store    string `env:"QOC_STORE"`
	Workers  int    `env:"QOC_WORKERS" envDefault:"0"`
}

// ParseEnv loads Config from the environment.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// bind registers the shared flags on fs with the current values as defaults.
func (c *Config) bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.Backend, "backend", c.Backend, "linear-algebra backend: native, gonum")
	fs.StringVar(&c.Store, "store", c.Store, "SQLite run store path (empty disables persistence)")
}

// logger builds the diagnostics logger writing to w.
func (c Config) logger(w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, ErrUsage)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "qoc",
		ReportTimestamp: true,
	}), nil
}
