package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Transform(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		text      string
		want      string
	}{
		{
			name:      "rewrite trims whitespace",
			operation: "rewrite",
			text:      "  some text  ",
			want:      "some text",
		},
		{
			name:      "summarize keeps first line",
			operation: "summarize",
			text:      "headline here\nbody line one\nbody line two",
			want:      "headline here",
		},
		{
			name:      "restructure drops blank lines",
			operation: "restructure",
			text:      "first\n\n  second  \n\nthird",
			want:      "first\nsecond\nthird",
		},
		{
			name:      "unknown operation passes text through",
			operation: "mystery",
			text:      " text ",
			want:      "text",
		},
	}

	p := NewStatic()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := p.Transform(context.Background(), Request{Operation: tt.operation, Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Text)
		})
	}
}

func TestHTTP_Transform(t *testing.T) {
	var captured chatRequest
	var capturedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		capturedAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "improved text"}},
			},
		})
	}))
	defer server.Close()

	p, err := NewHTTP(Settings{
		BaseURL: server.URL + "/v1",
		APIKey:  "secret-key",
		Model:   "test-model",
	})
	require.NoError(t, err)

	resp, err := p.Transform(context.Background(), Request{
		Operation: "rewrite",
		Text:      "original text",
	})
	require.NoError(t, err)
	assert.Equal(t, "improved text", resp.Text)

	assert.Equal(t, "Bearer secret-key", capturedAuth)
	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Rewrite")
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "original text", captured.Messages[1].Content)
}

func TestHTTP_InstructionsAppendToPrompt(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	p, err := NewHTTP(Settings{BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Transform(context.Background(), Request{
		Operation:    "summarize",
		Text:         "long text",
		Instructions: "keep it under ten words",
	})
	require.NoError(t, err)
	assert.Contains(t, captured.Messages[0].Content, "Summarize")
	assert.Contains(t, captured.Messages[0].Content, "keep it under ten words")
}

func TestHTTP_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer server.Close()

	p, err := NewHTTP(Settings{BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Transform(context.Background(), Request{Operation: "rewrite", Text: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestHTTP_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	p, err := NewHTTP(Settings{BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Transform(context.Background(), Request{Operation: "rewrite", Text: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestHTTP_ValidatesInput(t *testing.T) {
	p, err := NewHTTP(Settings{BaseURL: "http://localhost", Model: "m"})
	require.NoError(t, err)

	_, err = p.Transform(context.Background(), Request{Operation: "rewrite", Text: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = p.Transform(context.Background(), Request{Operation: "unknown", Text: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}

func TestNewHTTP_RequiresBaseURLAndModel(t *testing.T) {
	_, err := NewHTTP(Settings{Model: "m"})
	require.Error(t, err)

	_, err = NewHTTP(Settings{BaseURL: "http://localhost"})
	require.Error(t, err)
}

func TestNew_RegisteredProviders(t *testing.T) {
	ctx := context.Background()

	p, err := New(ctx, "static", Settings{})
	require.NoError(t, err)
	assert.Equal(t, "static", p.Name())

	p, err = New(ctx, "http", Settings{BaseURL: "http://localhost", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "http", p.Name())

	_, err = New(ctx, "nonexistent", Settings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider registered")
}
