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

package provider

import (
	"context"
	"strings"
)

func init() {
	Register("static", func(ctx context.Context, settings Settings) (Provider, error) {
		return NewStatic(), nil
	})
}

// 🧪 Static applies deterministic local transformations, for offline demos
// and tests where the network provider is out of reach.
type Static struct{}

// 🏭 NewStatic creates a static provider
func NewStatic() *Static {
	return &Static{}
}

// Name implements Provider.Name
func (p *Static) Name() string {
	return "static"
}

// Transform implements Provider.Transform
func (p *Static) Transform(ctx context.Context, req Request) (*Response, error) {
	switch req.Operation {
	case "summarize":
		line := req.Text
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx]
		}
		return &Response{Text: strings.TrimSpace(line)}, nil
	case "restructure":
		lines := strings.Split(req.Text, "\n")
		out := make([]string, 0, len(lines))
		for _, l := range lines {
			if strings.TrimSpace(l) != "" {
				out = append(out, strings.TrimSpace(l))
			}
		}
		return &Response{Text: strings.Join(out, "\n")}, nil
	default:
		return &Response{Text: strings.TrimSpace(req.Text)}, nil
	}
}
