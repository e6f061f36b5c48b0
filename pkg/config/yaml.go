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
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	// Define YAML schema
	type yamlConfig struct {
		Monitor struct {
			Backend    string   `yaml:"backend,omitempty"`
			IntervalMS int      `yaml:"interval_ms,omitempty"`
			MinLength  int      `yaml:"min_length,omitempty"`
			IgnoreApps []string `yaml:"ignore_apps,omitempty"`
		} `yaml:"monitor,omitempty"`
		Provider struct {
			Name      string `yaml:"name"`
			BaseURL   string `yaml:"base_url,omitempty"`
			APIKey    string `yaml:"api_key,omitempty"`
			APIKeyEnv string `yaml:"api_key_env,omitempty"`
			Model     string `yaml:"model,omitempty"`
		} `yaml:"provider,omitempty"`
		Replace struct {
			UndoCapacity   int `yaml:"undo_capacity,omitempty"`
			RestoreDelayMS int `yaml:"restore_delay_ms,omitempty"`
		} `yaml:"replace,omitempty"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, errors.Errorf("unmarshaling YAML: %w", err)
	}

	return &Config{
		Monitor: MonitorConfig{
			Backend:    yamlCfg.Monitor.Backend,
			IntervalMS: yamlCfg.Monitor.IntervalMS,
			MinLength:  yamlCfg.Monitor.MinLength,
			IgnoreApps: yamlCfg.Monitor.IgnoreApps,
		},
		Provider: ProviderConfig{
			Name:      yamlCfg.Provider.Name,
			BaseURL:   yamlCfg.Provider.BaseURL,
			APIKey:    yamlCfg.Provider.APIKey,
			APIKeyEnv: yamlCfg.Provider.APIKeyEnv,
			Model:     yamlCfg.Provider.Model,
		},
		Replace: ReplaceConfig{
			UndoCapacity:   yamlCfg.Replace.UndoCapacity,
			RestoreDelayMS: yamlCfg.Replace.RestoreDelayMS,
		},
	}, nil
}
