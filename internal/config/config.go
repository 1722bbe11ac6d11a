// Package config provides configuration management for the schemaforge CLI.
//
// Configuration is layered from four sources with ascending precedence:
// built-in defaults, a schemaforge.yaml file, SCHEMAFORGE_* environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/schemaforge-labs/schemaforge/pkg/ddl"
	"github.com/schemaforge-labs/schemaforge/pkg/dialect"
	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Config holds all CLI configuration options.
type Config struct {
	StorePath       string        `koanf:"store_path"`
	Dialect         string        `koanf:"dialect"`
	Format          string        `koanf:"format"`
	IncludeDrops    bool          `koanf:"include_drops"`
	IncludeComments bool          `koanf:"include_comments"`
	Verbose         bool          `koanf:"verbose"`
	Debounce        time.Duration `koanf:"debounce"`

	// ProjectRoot is the directory relative paths resolve against:
	// the config file's directory when one was found, the working
	// directory otherwise. Derived while loading, never read from file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultStoreFile = ".schemaforge/designs.db"
	DefaultDialect   = "postgresql"
	DefaultFormat    = string(schema.FormatJSON)
	DefaultDebounce  = 400 * time.Millisecond
)

// Validate checks if the configuration is valid. The dialect "all" is
// accepted: export fans out over every registered dialect.
func (c *Config) Validate() error {
	if c.Dialect != "all" {
		if _, ok := dialect.Get(c.Dialect); !ok {
			return fmt.Errorf("unknown dialect %q in configuration\nAvailable: %s, all\nHint: set dialect in schemaforge.yaml or pass --dialect",
				c.Dialect, strings.Join(dialect.List(), ", "))
		}
	}
	switch schema.Format(c.Format) {
	case schema.FormatJSON, schema.FormatYAML:
	default:
		return fmt.Errorf("unknown snapshot format %q, expected json or yaml", c.Format)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	return nil
}

// GenerateOptions returns the DDL generation options the config selects.
func (c *Config) GenerateOptions() ddl.Options {
	return ddl.Options{
		IncludeDrops:    c.IncludeDrops,
		IncludeComments: c.IncludeComments,
	}
}
