// Package config provides configuration types and loading for userdesk.
package config

import (
	"time"

	"github.com/getmockd/userdesk/pkg/record"
)

// Config represents the complete configuration for userdesk.
// Values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (userdesk.yaml in the current directory) or --config
// 4. Global config file ($XDG_CONFIG_HOME/userdesk/config.yaml)
// 5. Default values (lowest priority)
type Config struct {
	// Remote store settings
	URL      string        `yaml:"url" json:"url"`
	Resource string        `yaml:"resource" json:"resource"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`

	// Output settings
	JSON bool `yaml:"json" json:"json"`

	Log    LogConfig    `yaml:"log" json:"log"`
	Server ServerConfig `yaml:"server" json:"server"`

	// Sources tracks where each value came from, keyed by dotted YAML path.
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records which boolean keys were present in a loaded file so
	// that an explicit false can override an earlier true.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// ServerConfig holds settings for `userdesk serve`.
type ServerConfig struct {
	Addr      string          `yaml:"addr" json:"addr"`
	IDStyle   string          `yaml:"idStyle" json:"idStyle"`
	MaxItems  int             `yaml:"maxItems" json:"maxItems"`
	RateLimit float64         `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	SeedFile  string          `yaml:"seedFile,omitempty" json:"seedFile,omitempty"`
	Seed      []record.Record `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Config sources.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFile    = "file"
	SourceFlag    = "flag"
)

// Keys lists the tracked configuration keys in display order.
var Keys = []string{
	"url",
	"resource",
	"timeout",
	"json",
	"log.level",
	"log.format",
	"log.file",
	"server.addr",
	"server.idStyle",
	"server.maxItems",
	"server.rateLimit",
	"server.seedFile",
	"server.seed",
}

// Source returns where the value for key came from.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Mark records that key was set by source.
func (c *Config) Mark(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}
