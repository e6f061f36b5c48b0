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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register("http", func(ctx context.Context, settings Settings) (Provider, error) {
		return NewHTTP(settings)
	})
}

// 📖 systemPrompts maps operation identifiers to instructions for the model.
// Unknown operations fall back to the free-form instructions alone.
var systemPrompts = map[string]string{
	"rewrite":     "Rewrite the user's text to improve clarity and flow. Preserve meaning, tone, and language. Reply with the rewritten text only.",
	"summarize":   "Summarize the user's text concisely. Preserve the original language. Reply with the summary only.",
	"restructure": "Restructure the user's text for better organization: reorder, split, or merge sentences and paragraphs as needed. Reply with the restructured text only.",
}

// 🌐 HTTP is a chat-completions transformation provider
type HTTP struct {
	settings Settings
	client   *http.Client
}

// 🏭 NewHTTP creates an HTTP provider
func NewHTTP(settings Settings) (*HTTP, error) {
	if settings.BaseURL == "" {
		return nil, errors.Errorf("base URL is required")
	}
	if settings.Model == "" {
		return nil, errors.Errorf("model is required")
	}
	return &HTTP{
		settings: settings,
		client:   http.DefaultClient,
	}, nil
}

// Name implements Provider.Name
func (p *HTTP) Name() string {
	return "http"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transform implements Provider.Transform
func (p *HTTP) Transform(ctx context.Context, req Request) (*Response, error) {
	logger := zerolog.Ctx(ctx)

	if req.Text == "" {
		return nil, errors.Errorf("subject text is empty")
	}

	system := systemPrompts[req.Operation]
	if req.Instructions != "" {
		if system != "" {
			system += "\n\nAdditional instructions: " + req.Instructions
		} else {
			system = req.Instructions
		}
	}
	if system == "" {
		return nil, errors.Errorf("unknown operation %q and no instructions given", req.Operation)
	}

	body, err := json.Marshal(chatRequest{
		Model: p.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Text},
		},
	})
	if err != nil {
		return nil, errors.Errorf("encoding request: %w", err)
	}

	url := strings.TrimSuffix(p.settings.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.settings.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.settings.APIKey)
	}

	logger.Debug().Str("operation", req.Operation).Int("chars", len(req.Text)).Msg("requesting transformation")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, errors.Errorf("provider error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.Errorf("provider returned no choices")
	}

	return &Response{Text: parsed.Choices[0].Message.Content}, nil
}
