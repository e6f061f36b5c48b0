// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 👀 MonitorConfig configures the selection monitor
type MonitorConfig struct {
	Backend    string   // uiprobe backend name
	IntervalMS int      // poll interval in milliseconds
	MinLength  int      // minimum selection length in runes
	IgnoreApps []string // doublestar globs matched against bundle IDs
}

// 🤖 ProviderConfig configures the transformation provider
type ProviderConfig struct {
	Name      string // registered provider name ("http", "static")
	BaseURL   string
	APIKey    string
	APIKeyEnv string // environment variable to read the key from
	Model     string
}

// ⚙️ ReplaceConfig configures the replacement engine
type ReplaceConfig struct {
	UndoCapacity   int // bounded undo history size
	RestoreDelayMS int // clipboard restore delay after a synthesized paste
}

// 📚 Config represents the complete configuration
type Config struct {
	Monitor  MonitorConfig
	Provider ProviderConfig
	Replace  ReplaceConfig
}

// 🌱 Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Backend:    "emulated",
			IntervalMS: 300,
			MinLength:  3,
		},
		Provider: ProviderConfig{
			Name: "static",
		},
		Replace: ReplaceConfig{
			UndoCapacity:   50,
			RestoreDelayMS: 500,
		},
	}
}

// 🎯 Load loads the configuration from a file, falling back to defaults when
// path is empty.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		logger.Debug().Msg("no config file, using defaults")
		return Default(), nil
	}
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Monitor.Backend == "" {
		c.Monitor.Backend = def.Monitor.Backend
	}
	if c.Monitor.IntervalMS == 0 {
		c.Monitor.IntervalMS = def.Monitor.IntervalMS
	}
	if c.Monitor.MinLength == 0 {
		c.Monitor.MinLength = def.Monitor.MinLength
	}
	if c.Provider.Name == "" {
		c.Provider.Name = def.Provider.Name
	}
	if c.Replace.UndoCapacity == 0 {
		c.Replace.UndoCapacity = def.Replace.UndoCapacity
	}
	if c.Replace.RestoreDelayMS == 0 {
		c.Replace.RestoreDelayMS = def.Replace.RestoreDelayMS
	}
}

// ✅ Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Monitor.IntervalMS < 0 {
		return errors.Errorf("monitor interval must not be negative")
	}
	if c.Monitor.MinLength < 1 {
		return errors.Errorf("minimum selection length must be at least 1")
	}
	for _, pattern := range c.Monitor.IgnoreApps {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	if c.Provider.Name == "" {
		return errors.Errorf("provider name is required")
	}
	if c.Provider.Name == "http" {
		if c.Provider.BaseURL == "" {
			return errors.Errorf("http provider requires base_url")
		}
		if c.Provider.Model == "" {
			return errors.Errorf("http provider requires model")
		}
	}
	if c.Replace.UndoCapacity < 1 {
		return errors.Errorf("undo capacity must be at least 1")
	}
	return nil
}

// ResolveAPIKey returns the API key, preferring the environment variable
func (c *ProviderConfig) ResolveAPIKey() string {
	if c.APIKeyEnv != "" {
		if key := os.Getenv(c.APIKeyEnv); key != "" {
			return key
		}
	}
	return c.APIKey
}

// PollInterval returns the monitor interval as a duration
func (c *MonitorConfig) PollInterval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// RestoreDelay returns the clipboard restore delay as a duration
func (c *ReplaceConfig) RestoreDelay() time.Duration {
	return time.Duration(c.RestoreDelayMS) * time.Millisecond
}
