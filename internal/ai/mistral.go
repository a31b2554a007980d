// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// mistralVendor uses Mistral's OpenAI-compatible chat completions API.
type mistralVendor struct {
	config VendorConfig
	client *http.Client
}

func newMistral(cfg VendorConfig) *mistralVendor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-small-latest"
	}
	return &mistralVendor{
		config: cfg,
		client: &http.Client{Timeout: cfg.timeout()},
	}
}

func (v *mistralVendor) Name() string { return "mistral" }

func (v *mistralVendor) Chat(ctx context.Context, system string, messages []Message, opts ChatOptions) (string, error) {
	body := chatRequest{
		Model:       v.config.Model,
		Messages:    append([]Message{{Role: "system", Content: system}}, messages...),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("mistral marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("mistral request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.config.APIKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mistral http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mistral read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Vendor: "mistral", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("mistral unmarshal: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("mistral: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

// --- OpenAI-compatible request/response types ---

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}
