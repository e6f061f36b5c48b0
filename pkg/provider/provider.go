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

	"gitlab.com/tozd/go/errors"
)

// 📨 Request carries one transformation: an operation identifier, the subject
// text, and optional free-form instructions.
type Request struct {
	Operation    string
	Text         string
	Instructions string
}

// 📬 Response carries the transformed text
type Response struct {
	Text string
}

// 🔌 Provider is the external transformation service, treated as a black box
// with unspecified latency and possible failure.
type Provider interface {
	// Name identifies the provider backend
	Name() string

	// Transform applies the requested operation to the subject text
	Transform(ctx context.Context, req Request) (*Response, error)
}

// 🔧 Settings configures a provider backend
type Settings struct {
	BaseURL string
	APIKey  string
	Model   string
}

// 🏭 Factory creates a new provider
type Factory func(ctx context.Context, settings Settings) (Provider, error)

var (
	// 🗺️ providers is a map of provider names to factories
	providers = make(map[string]Factory)
)

// 📝 Register registers a provider factory
func Register(name string, factory Factory) {
	providers[name] = factory
}

// 🎯 Get returns a provider factory by name
func Get(name string) Factory {
	return providers[name]
}

// 🚀 New creates a provider by registered name
func New(ctx context.Context, name string, settings Settings) (Provider, error) {
	factory := Get(name)
	if factory == nil {
		return nil, errors.Errorf("no provider registered with name %q", name)
	}
	p, err := factory(ctx, settings)
	if err != nil {
		return nil, errors.Errorf("creating provider %q: %w", name, err)
	}
	return p, nil
}
