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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Monitor *struct {
			Backend    string   `hcl:"backend,optional"`
			IntervalMS int      `hcl:"interval_ms,optional"`
			MinLength  int      `hcl:"min_length,optional"`
			IgnoreApps []string `hcl:"ignore_apps,optional"`
		} `hcl:"monitor,block"`
		Provider *struct {
			Name      string `hcl:"name"`
			BaseURL   string `hcl:"base_url,optional"`
			APIKey    string `hcl:"api_key,optional"`
			APIKeyEnv string `hcl:"api_key_env,optional"`
			Model     string `hcl:"model,optional"`
		} `hcl:"provider,block"`
		Replace *struct {
			UndoCapacity   int `hcl:"undo_capacity,optional"`
			RestoreDelayMS int `hcl:"restore_delay_ms,optional"`
		} `hcl:"replace,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{}
	if hclCfg.Monitor != nil {
		cfg.Monitor = MonitorConfig{
			Backend:    hclCfg.Monitor.Backend,
			IntervalMS: hclCfg.Monitor.IntervalMS,
			MinLength:  hclCfg.Monitor.MinLength,
			IgnoreApps: hclCfg.Monitor.IgnoreApps,
		}
	}
	if hclCfg.Provider != nil {
		cfg.Provider = ProviderConfig{
			Name:      hclCfg.Provider.Name,
			BaseURL:   hclCfg.Provider.BaseURL,
			APIKey:    hclCfg.Provider.APIKey,
			APIKeyEnv: hclCfg.Provider.APIKeyEnv,
			Model:     hclCfg.Provider.Model,
		}
	}
	if hclCfg.Replace != nil {
		cfg.Replace = ReplaceConfig{
			UndoCapacity:   hclCfg.Replace.UndoCapacity,
			RestoreDelayMS: hclCfg.Replace.RestoreDelayMS,
		}
	}
	return cfg, nil
}
